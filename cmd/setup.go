package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Before applies --verbose and, when --config is given, replaces the runner's configuration with that file.
//
// A missing file leaves the defaults in place so 'setup' can create it.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if !cmd.IsSet("config") {
		return ctx, nil
	}

	r.configPath = cmd.String("config")
	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.api = services.NewAPIService(config.Client.ProxyURL, r.httpClient)
	r.logger.Debug("loaded config", "path", r.configPath)
	return ctx, nil
}

// After releases resources opened by the action.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Setup creates the configuration file from the template if it is missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			r.config = config
		}
		r.writePlain("✓ Created %s\n", r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back the latest migration on %s\n", r.config.Database.Path)
	}

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready: %s (%d migrations applied)\n", r.config.Database.Path, applied)

	if r.config.BearerToken() == "" {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set %s or tmdb.bearer_token in %s\n", shared.TokenEnvVar, r.configPath)
		r.writePlain("2. Run 'streamlist serve' and then 'streamlist search \"batman\"'\n")
	}
	return nil
}
