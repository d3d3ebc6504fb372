package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"frameshot/internal/capture"
	"frameshot/internal/domain"
	"frameshot/internal/web"
)

// Capturer produces screenshots. *capture.Service satisfies it.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Result, error)
}

// PresetStore is the subset of storage.PresetRepository the API needs.
type PresetStore interface {
	SavePreset(ctx context.Context, preset domain.Preset) error
	ListPresets(ctx context.Context) ([]domain.Preset, error)
	DeletePreset(ctx context.Context, name string) error
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain: Recovery → request logger. There is no auth and no rate
// limiting; frameshot is a single-tenant tool.
func NewRouter(capturer Capturer, presets PresetStore, mode string, logger logrus.FieldLogger, startTime time.Time) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.GET("/", web.Index)

	api := r.Group("/api")
	api.GET("/health", Health(startTime))

	api.POST("/screenshot", Screenshot(capturer))
	api.GET("/screenshot.png", DownloadScreenshot(capturer))

	api.GET("/presets", ListPresets(presets))
	api.PUT("/presets/:name", SavePreset(presets))
	api.DELETE("/presets/:name", DeletePreset(presets))

	return r
}
