package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"weekly-planner/internal/app"
	"weekly-planner/internal/config"
	"weekly-planner/internal/logging"
	"weekly-planner/internal/offline"
	"weekly-planner/internal/server"
	"weekly-planner/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	services, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	opts := server.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     services.Metrics,
		DataPath:    filepath.Dir(cfg.DatabasePath),
	}

	if cfg.AssetOriginURL != "" {
		cache, err := offline.New(cfg.OfflineCacheName, cfg.AssetOriginURL, nil, logger)
		if err != nil {
			return err
		}
		installCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := cache.Install(installCtx, offline.StaticAssets); err != nil {
			logger.Warn("Offline cache not installed", zap.Error(err))
		} else if purged := cache.Activate(); len(purged) > 0 {
			logger.Info("Purged old caches", zap.Strings("caches", purged))
		}
		cancel()
		opts.Offline = cache
	}

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, services.App, logger)
		if err != nil {
			return err
		}
		opts.Webhook = bot
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(services.App, opts, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Planner server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return err
	}

	logger.Info("Server exiting")
	return nil
}
