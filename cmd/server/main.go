package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tradecsv/internal/config"
	"github.com/JonMunkholm/tradecsv/internal/core"
	"github.com/JonMunkholm/tradecsv/internal/extract"
	"github.com/JonMunkholm/tradecsv/internal/logging"
	"github.com/JonMunkholm/tradecsv/internal/metrics"
	"github.com/JonMunkholm/tradecsv/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"output_file", cfg.Output.File,
		"max_concurrent_batches", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	slog.Debug("full configuration", "config", cfg.String())

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	engine := extract.NewPDFEngine(extract.EngineConfig{
		LineTolerance: cfg.Extract.LineTolerance,
		TextTolerance: cfg.Extract.TextTolerance,
	})
	flavors, err := extract.ParseFlavors(cfg.Extract.Flavors)
	if err != nil {
		slog.Error("invalid extraction flavors", "error", err)
		os.Exit(1)
	}
	extractor := extract.NewExtractor(engine,
		extract.WithAttempts(flavors...),
		extract.WithMetrics(m),
	)

	service, err := core.NewService(extractor, cfg, m)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	slog.Info("staging area ready", "dir", service.StagingDir(), "flavors", flavors)

	server := web.NewServer(service, cfg, m)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for batches to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
