package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"cookbook/pkg/app"
)

// main is the entry point process managers run; it logs through zap from the start.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(env.ToMap(os.Environ()))
	if err != nil {
		zap.NewExample().Fatal("invalid environment", zap.Error(err))
	}
	logger, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zap.NewExample().Fatal("unable to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := app.Run(ctx, os.Args[1:], logger); err != nil {
		logger.Error("application stopped with error", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}
