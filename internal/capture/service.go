package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"frameshot/internal/browser"
)

// Options holds the capture policy. Zero NavigationTimeout, ScaleFactor and
// Wait fall back to DefaultOptions; a zero SettleDelay skips the settle wait.
type Options struct {
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ScaleFactor       float64
	Wait              browser.WaitCondition
}

// DefaultOptions returns the stock policy: 30s navigation timeout, 1s settle, 2x scale, networkidle2.
func DefaultOptions() Options {
	return Options{
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       time.Second,
		ScaleFactor:       2,
		Wait:              browser.NetworkIdle2,
	}
}

// Service turns capture requests into PNG screenshots, one browser process per request.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	launcher browser.Launcher
	opts     Options
	log      logrus.FieldLogger
}

// NewService creates a capture service on top of launcher.
func NewService(launcher browser.Launcher, opts Options, logger logrus.FieldLogger) *Service {
	def := DefaultOptions()
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = def.NavigationTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.ScaleFactor <= 0 {
		opts.ScaleFactor = def.ScaleFactor
	}
	if opts.Wait == (browser.WaitCondition{}) {
		opts.Wait = def.Wait
	}
	return &Service{
		launcher: launcher,
		opts:     opts,
		log:      logger.WithField("component", "capture"),
	}
}

// Options returns the effective policy.
func (s *Service) Options() Options {
	return s.opts
}

// Capture validates req, renders it in a fresh browser session and returns the
// visible viewport as PNG. Any returned error is a *Error. The session is
// closed before Capture returns, whatever happens.
func (s *Service) Capture(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateURL(req.URL); err != nil {
		s.log.WithField("url", req.URL).Info("Rejected capture request")
		return nil, err
	}
	req = req.Normalize()

	log := s.log.WithFields(logrus.Fields{
		"url":    req.URL,
		"width":  req.Width,
		"height": req.Height,
	})
	start := time.Now()
	log.Info("Attempting to capture screenshot")

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to launch browser")
		return nil, wrapError(KindResource, err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			// The image is already in hand; a failed close is logged, not returned.
			log.WithError(closeErr).Warn("Error releasing browser session")
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to open page")
		return nil, wrapError(KindResource, err)
	}

	if err := page.SetViewport(ctx, req.Width, req.Height, s.opts.ScaleFactor); err != nil {
		log.WithError(err).Error("Failed to set viewport")
		return nil, wrapError(KindNavigation, err)
	}

	page.SetNavigationTimeout(s.opts.NavigationTimeout)
	if err := page.Navigate(ctx, req.URL, s.opts.Wait); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.WithError(err).Warn("Navigation timed out")
			return nil, newError(KindNavigation,
				fmt.Sprintf("Navigation timeout of %d ms exceeded", s.opts.NavigationTimeout.Milliseconds()), err)
		}
		log.WithError(err).Error("Navigation failed")
		return nil, wrapError(KindNavigation, err)
	}

	if err := settle(ctx, s.opts.SettleDelay); err != nil {
		log.WithError(err).Warn("Interrupted while waiting for the page to settle")
		return nil, wrapError(KindNavigation, err)
	}

	img, err := page.Screenshot(ctx, false)
	if err != nil {
		log.WithError(err).Error("Failed to take screenshot")
		return nil, wrapError(KindEncoding, err)
	}
	if len(img) == 0 {
		log.Error("Browser returned an empty screenshot")
		return nil, newError(KindEncoding, "browser returned an empty screenshot", nil)
	}

	log.WithFields(logrus.Fields{
		"bytes":    len(img),
		"duration": time.Since(start).String(),
	}).Info("Screenshot captured successfully")

	return &Result{
		Image:    img,
		MIMEType: MIMETypePNG,
		Width:    req.Width,
		Height:   req.Height,
		Scale:    s.opts.ScaleFactor,
	}, nil
}

// settle gives CSS/JS animations time to finish before the capture.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
