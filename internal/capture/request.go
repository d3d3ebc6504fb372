package capture

import (
	"encoding/base64"
	"net/url"
)

// Viewport bounds and defaults, in CSS pixels.
const (
	DefaultWidth  = 1440
	DefaultHeight = 900

	MinWidth  = 320
	MaxWidth  = 3840
	MinHeight = 320
	MaxHeight = 2160
)

// MIMETypePNG is the only format the service produces.
const MIMETypePNG = "image/png"

// Request describes one screenshot. Zero Width or Height means "use the default".
type Request struct {
	URL    string
	Width  int
	Height int
}

// Result is a captured viewport.
type Result struct {
	Image    []byte
	MIMEType string
	// Width and Height are the clamped viewport in CSS pixels; the image is Scale times larger.
	Width  int
	Height int
	Scale  float64
}

// DataURI returns the image as a base64 data URI, ready to embed in JSON or an <img> tag.
func (r *Result) DataURI() string {
	return "data:" + r.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(r.Image)
}

// ValidateURL checks that raw is an absolute URL with a scheme and a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return newError(KindInvalidInput, "URL is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return newError(KindInvalidInput, "Invalid URL", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return newError(KindInvalidInput, "Invalid URL", nil)
	}
	return nil
}

// ClampWidth forces w into [MinWidth, MaxWidth].
func ClampWidth(w int) int {
	return clamp(w, MinWidth, MaxWidth)
}

// ClampHeight forces h into [MinHeight, MaxHeight].
func ClampHeight(h int) int {
	return clamp(h, MinHeight, MaxHeight)
}

// Normalize fills in default dimensions and clamps them.
func (r Request) Normalize() Request {
	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	r.Width = ClampWidth(r.Width)
	r.Height = ClampHeight(r.Height)
	return r
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
