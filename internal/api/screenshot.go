package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"frameshot/internal/capture"
)

// ScreenshotRequest is the body of POST /api/screenshot.
type ScreenshotRequest struct {
	URL    string `json:"url"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
}

// ScreenshotResponse carries the PNG as a data URI.
type ScreenshotResponse struct {
	Screenshot string `json:"screenshot"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// toCaptureRequest applies defaults to omitted dimensions and clamps given ones.
// An explicit 0 is clamped, not treated as omitted.
func (r ScreenshotRequest) toCaptureRequest() capture.Request {
	req := capture.Request{URL: r.URL, Width: capture.DefaultWidth, Height: capture.DefaultHeight}
	if r.Width != nil {
		req.Width = capture.ClampWidth(*r.Width)
	}
	if r.Height != nil {
		req.Height = capture.ClampHeight(*r.Height)
	}
	return req
}

// Screenshot returns a handler for POST /api/screenshot.
//
// Flow:
//  1. Parse body; malformed JSON is a client error.
//  2. Capturer.Capture (validation, clamping, browser session).
//  3. Encode as data URI and return 200.
func Screenshot(capturer Capturer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ScreenshotRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
			return
		}

		res, err := capturer.Capture(c.Request.Context(), body.toCaptureRequest())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, ScreenshotResponse{Screenshot: res.DataURI()})
	}
}

// DownloadScreenshot returns a handler for GET /api/screenshot.png that sends
// the raw PNG as a file attachment.
func DownloadScreenshot(capturer Capturer) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := ScreenshotRequest{URL: c.Query("url")}
		for _, dim := range []struct {
			name string
			dst  **int
		}{{"width", &body.Width}, {"height", &body.Height}} {
			raw, ok := c.GetQuery(dim.name)
			if !ok {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Invalid %s: %q", dim.name, raw)})
				return
			}
			*dim.dst = &v
		}

		res, err := capturer.Capture(c.Request.Context(), body.toCaptureRequest())
		if err != nil {
			respondError(c, err)
			return
		}

		filename := fmt.Sprintf("frameshot-%d.png", time.Now().UnixMilli())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, res.MIMEType, res.Image)
	}
}

// respondError maps a capture failure to 400 for bad input and 500 for everything else.
func respondError(c *gin.Context, err error) {
	ce := capture.AsError(err)
	status := http.StatusInternalServerError
	if ce.ClientError() {
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorResponse{Error: ce.Message})
}
