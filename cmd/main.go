package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mehmetcc/travelize/internal/app"
	"github.com/mehmetcc/travelize/internal/config"
	"go.uber.org/zap"
)

func main() {
	// init logger
	logger, err := newLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// load config
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// wire stores and routes
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close stores", zap.Error(err))
		}
	}()

	if err := a.Run(ctx); err != nil {
		logger.Error("application stopped with error", zap.Error(err))
		return
	}
	logger.Info("application stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
