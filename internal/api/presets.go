package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"frameshot/internal/capture"
	"frameshot/internal/domain"
)

// PresetsResponse is returned by GET /api/presets.
type PresetsResponse struct {
	Presets []domain.Preset `json:"presets"`
}

// SavePresetRequest is the body of PUT /api/presets/:name.
type SavePresetRequest struct {
	Width    int             `json:"width" binding:"required"`
	Height   int             `json:"height" binding:"required"`
	Category domain.Category `json:"category"`
}

// ListPresets returns a handler for GET /api/presets.
func ListPresets(store PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		presets, err := store.ListPresets(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		if presets == nil {
			presets = []domain.Preset{}
		}
		c.JSON(http.StatusOK, PresetsResponse{Presets: presets})
	}
}

// SavePreset returns a handler for PUT /api/presets/:name. Dimensions are
// clamped to the capture bounds so every stored preset is usable as is.
func SavePreset(store PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Param("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Preset name is required"})
			return
		}

		var body SavePresetRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
			return
		}
		if body.Category == "" {
			body.Category = domain.CategoryCustom
		}

		preset := domain.Preset{
			Name:     name,
			Width:    capture.ClampWidth(body.Width),
			Height:   capture.ClampHeight(body.Height),
			Category: body.Category,
		}
		if err := store.SavePreset(c.Request.Context(), preset); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, preset)
	}
}

// DeletePreset returns a handler for DELETE /api/presets/:name.
func DeletePreset(store PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeletePreset(c.Request.Context(), c.Param("name")); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
