package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcus-ai/marcus/internal/config"
	"github.com/marcus-ai/marcus/internal/wire"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	app, err := wire.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	if app.Pool != nil {
		defer app.Pool.Close()
	}

	if err := app.StartupReconcile(ctx); err != nil {
		logger.Error("startup reconciliation failed", "error", err)
		os.Exit(1)
	}
	app.StartBackground(ctx)

	if envFile := os.Getenv("CONFIG_ENV_FILE"); envFile != "" {
		if err := config.WatchEnvFile(ctx, envFile, func(config.Config) {
			logger.Info("configuration file changed; process environment updated, running services keep the configuration they were built with")
		}); err != nil {
			logger.Error("failed to watch config env file", "path", envFile, "error", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marcus tool surface listening on stdio")
		errCh <- app.MCPServer.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mcp server error", "error", err)
		}
	}

	// Background loops observe the same ctx and exit on their next tick;
	// every ledger write is already durable at the point it completes, so
	// there is no buffered state left to flush on the way out.
	logger.Info("marcus stopped")
}
