package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/streamlist/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.LoadConfigOrDefault(defaultConfigPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := runner.command()
	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatalf("application error: %v", err)
	}
}
