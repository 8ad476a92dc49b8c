package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	connectordefaults "github.com/gabriel/bigfinish-metadata/internal/connectors/defaults"
	apihttp "github.com/gabriel/bigfinish-metadata/internal/http"
	"github.com/gabriel/bigfinish-metadata/internal/metrics"
	"github.com/gabriel/bigfinish-metadata/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	metrics.Register()

	connectorRegistry, err := connectordefaults.NewRegistry(cfg, logger)
	if err != nil {
		slog.Error("failed to build connector registry", "error", err)
		os.Exit(1)
	}

	app := apihttp.NewServerWithLogger(cfg, connectorRegistry, logger)

	proberCtx, proberCancel := context.WithCancel(context.Background())
	prober := scheduler.NewProber(
		connectorRegistry,
		scheduler.ProberConfig{
			Interval: time.Duration(cfg.ProbeMinutes) * time.Minute,
			Timeout:  cfg.HTTPTimeout,
		},
		slog.Default(),
	)
	if cfg.ProbeEnabled {
		prober.Start(proberCtx)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started",
		"port", cfg.Port,
		"env", cfg.Environment,
		"cors", cfg.UseCORS,
		"auth", cfg.UseAuth,
		"stripTitle", cfg.StripTitle,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	proberCancel()
	if cfg.ProbeEnabled {
		prober.StopWait(2 * time.Second)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
