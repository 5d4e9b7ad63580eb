package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/proposals/internal/config"
	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/i18n"
	"github.com/JonMunkholm/proposals/internal/logging"
	"github.com/JonMunkholm/proposals/internal/metrics"
	"github.com/JonMunkholm/proposals/internal/telemetry"
	"github.com/JonMunkholm/proposals/internal/transport"
	"github.com/JonMunkholm/proposals/internal/web"
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

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Transmit.Backend,
		"submit_max_concurrent", cfg.Submit.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"locale", cfg.Locale.Default,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	backend, err := transport.Open(ctx, cfg, cfg.Tracing.ServiceName)
	if err != nil {
		slog.Error("failed to open transmit backend", "backend", cfg.Transmit.Backend, "error", err)
		os.Exit(1)
	}

	translator, err := i18n.New(cfg.Locale.Default)
	if err != nil {
		slog.Error("failed to load message catalogs", "error", err)
		os.Exit(1)
	}
	for _, tag := range translator.Supported() {
		if missing := translator.Missing(tag, append(append([]string(nil), core.CatalogKeys...), web.CatalogKeys...)); len(missing) > 0 {
			slog.Warn("catalog is missing keys", "locale", tag.String(), "keys", missing)
		}
	}

	limiter := core.NewSubmitLimiter(cfg.Submit.MaxConcurrent, cfg.Submit.MaxWaitTime)

	server, err := web.NewServer(web.Deps{
		Config:      cfg,
		Transmitter: backend,
		Limiter:     limiter,
		Metrics:     metrics.New(),
		Translator:  translator,
		Logger:      slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for in-flight submissions before closing the backend
		status := limiter.Status()
		if status.Active > 0 {
			slog.Info("waiting for submissions to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("submissions did not complete in time", "error", err)
			} else {
				slog.Info("all submissions completed")
			}
		}
	}()

	if err := server.Start(ctx); err != nil {
		slog.Error("server failed", "error", err)
		stop()
	}

	// Start returns as soon as the listener closes; handlers and
	// submissions may still be running until drained is closed.
	<-drained
	backend.Close()

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		slog.Warn("trace flush failed", "error", err)
	}
	slog.Info("server stopped")
}
