package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
)

// ErrBrowserNotFound is returned when no browser binary is configured and none can be found on the host.
var ErrBrowserNotFound = errors.New("rod browser dependency not found")

// RodOptions configures how RodLauncher starts Chrome.
type RodOptions struct {
	// Bin is the browser executable. Empty means launcher.LookPath().
	Bin string
	// Stealth injects go-rod/stealth into every new page.
	Stealth bool
}

// RodLauncher implements Launcher with the rod library. Every Launch spawns its own process.
type RodLauncher struct {
	opts RodOptions
	log  logrus.FieldLogger
}

// NewRodLauncher creates a launcher for per-capture Chrome processes.
func NewRodLauncher(opts RodOptions, logger logrus.FieldLogger) *RodLauncher {
	return &RodLauncher{
		opts: opts,
		log:  logger.WithField("component", "browser"),
	}
}

// Launch starts Chrome and connects to it over CDP.
func (l *RodLauncher) Launch(ctx context.Context) (Session, error) {
	path := l.opts.Bin
	if path == "" {
		var exists bool
		path, exists = launcher.LookPath()
		if !exists {
			l.log.Error("Cannot find browser executable for rod")
			return nil, ErrBrowserNotFound
		}
	}

	ln := launcher.New().
		Context(ctx).
		Bin(path).
		Headless(true).
		NoSandbox(true).
		Leakless(true)
	ln.Set(flags.Flag("disable-setuid-sandbox"))
	ln.Set(flags.Flag("disable-dev-shm-usage"))
	ln.Set(flags.Flag("disable-accelerated-2d-canvas"))
	ln.Set(flags.Flag("no-first-run"))
	ln.Set(flags.Flag("no-zygote"))
	ln.Set(flags.Flag("disable-gpu"))

	u, err := ln.Launch()
	if err != nil {
		// Cleanup waits for the process to exit, which never happens if it
		// failed to start, so remove the user-data dir directly.
		ln.Kill()
		if rmErr := os.RemoveAll(ln.Get(flags.UserDataDir)); rmErr != nil {
			l.log.WithError(rmErr).Warn("Failed to remove browser user-data dir")
		}
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	l.log.WithField("control_url", u).Debug("Rod browser instance launched")

	return &rodSession{
		browser:  b,
		launcher: ln,
		stealth:  l.opts.Stealth,
		log:      l.log,
	}, nil
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	stealth  bool
	log      logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if s.stealth {
		page, err = stealth.Page(s.browser.Context(ctx))
	} else {
		page, err = s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &rodPage{page: page, navTimeout: 30 * time.Second}, nil
}

// Close closes the browser over CDP, then makes sure the process and its
// user-data dir are gone even if the CDP call failed.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			s.log.WithError(err).Warn("Error closing rod browser instance")
			s.closeErr = fmt.Errorf("error closing browser: %w", err)
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.log.Debug("Rod browser instance closed")
	})
	return s.closeErr
}

type rodPage struct {
	page       *rod.Page
	navTimeout time.Duration
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int, scale float64) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	})
}

func (p *rodPage) SetNavigationTimeout(d time.Duration) {
	p.navTimeout = d
}

func (p *rodPage) Navigate(ctx context.Context, url string, wait WaitCondition) error {
	if p.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.navTimeout)
		defer cancel()
	}
	// The listener has to be in place before Navigate or early requests are missed.
	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()
	waitQuiet := waitNetworkQuiet(listenCtx, p.page, wait)

	page := p.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return err
	}
	return waitQuiet()
}

func (p *rodPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// waitNetworkQuiet starts tracking in-flight requests on page until ctx ends
// and returns a function that blocks until the page is idle per wait.
func waitNetworkQuiet(ctx context.Context, page *rod.Page, wait WaitCondition) func() error {
	idle := newNetworkIdle(wait)
	listen := page.Context(ctx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) { idle.started(string(e.RequestID)) },
		func(e *proto.NetworkLoadingFinished) { idle.finished(string(e.RequestID)) },
		func(e *proto.NetworkLoadingFailed) { idle.finished(string(e.RequestID)) },
	)
	go listen()

	return func() error {
		return idle.wait(ctx)
	}
}
