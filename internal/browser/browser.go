package browser

import (
	"context"
	"time"
)

// Launcher starts headless browser processes.
type Launcher interface {
	// Launch starts a new, isolated browser process and returns a session bound to it.
	Launch(ctx context.Context) (Session, error)
}

// Session is one launched browser process. It must not be shared between captures.
type Session interface {
	// NewPage opens a blank tab in the session.
	NewPage(ctx context.Context) (Page, error)

	// Close terminates the browser process. Calling it more than once is a no-op.
	Close() error
}

// Page is a single tab inside a Session.
type Page interface {
	// SetViewport sets the rendering surface to width x height CSS pixels at the given device scale factor.
	SetViewport(ctx context.Context, width, height int, scale float64) error

	// SetNavigationTimeout bounds every following Navigate call.
	SetNavigationTimeout(d time.Duration)

	// Navigate loads url and returns once the wait condition is met.
	Navigate(ctx context.Context, url string, wait WaitCondition) error

	// Screenshot returns the page as PNG bytes. With fullPage false only the visible viewport is captured.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}

// WaitCondition declares a page settled once no more than MaxInflight network
// requests have been outstanding for QuietPeriod.
type WaitCondition struct {
	MaxInflight int
	QuietPeriod time.Duration
}

// NetworkIdle2 is the usual "networkidle2" heuristic: at most two connections for 500ms.
var NetworkIdle2 = WaitCondition{MaxInflight: 2, QuietPeriod: 500 * time.Millisecond}
