package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"frameshot/internal/api"
	"frameshot/internal/bot"
	"frameshot/internal/browser"
	"frameshot/internal/capture"
	"frameshot/internal/config"
	"frameshot/internal/domain"
	"frameshot/internal/storage"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(cfg.Level())

	log.WithFields(logrus.Fields{
		"server_addr":        cfg.ServerAddr,
		"badgerdb_path":      cfg.BadgerDBPath,
		"navigation_timeout": cfg.NavigationTimeout.String(),
		"settle_delay":       cfg.SettleDelay.String(),
		"stealth":            cfg.BrowserStealth,
	}).Info("Configuration loaded successfully")

	// --- Initialize Components ---
	repo, err := storage.NewBadgerRepository(cfg.BadgerDBPath, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()
	if err := repo.SeedPresets(context.Background(), domain.DefaultPresets); err != nil {
		log.WithError(err).Warn("Continuing without default presets")
	}

	launcher := browser.NewRodLauncher(browser.RodOptions{
		Bin:     cfg.BrowserBin,
		Stealth: cfg.BrowserStealth,
	}, log)

	opts := capture.DefaultOptions()
	opts.NavigationTimeout = cfg.NavigationTimeout
	opts.SettleDelay = cfg.SettleDelay
	captureService := capture.NewService(launcher, opts, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Optional Telegram client ---
	if cfg.TelegramBotToken != "" {
		botHandler, err := bot.NewHandler(cfg.TelegramBotToken, captureService, repo, log)
		if err != nil {
			log.WithError(err).Error("Telegram bot disabled")
		} else {
			go botHandler.Start(ctx)
		}
	}

	// --- HTTP Server ---
	router := api.NewRouter(captureService, repo, cfg.GinMode, log, time.Now())
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		log.WithField("addr", cfg.ServerAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
			stop()
		}
	}()

	log.Info("FrameShot is running. Press Ctrl+C to exit.")
	<-ctx.Done()

	// --- Graceful Shutdown ---
	log.Info("Shutting down FrameShot...")
	stop()

	// In-flight captures close their own browsers; give them time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server forced shutdown")
	} else {
		log.Info("HTTP server drained gracefully")
	}

	log.Info("FrameShot shut down gracefully.")
}
