package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/streamlist/internal/server"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the search proxy until the context is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		cfg.Port = port
	}

	logger := shared.WithLogger(r.logger, "component", "proxy")
	upstream := services.NewTMDBServiceFromConfig(r.config, r.httpClient)
	if !upstream.HasCredentials() {
		logger.Warn("no TMDB credentials configured, searches will fail", "env", shared.TokenEnvVar)
	}

	r.writePlain("Search proxy listening on http://%s\n", cfg.Addr())

	err := server.ListenAndServe(ctx, server.Options{
		Addr:        cfg.Addr(),
		Upstream:    upstream,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("search proxy stopped: %w", err)
	}
	return nil
}

// Status checks the health of the configured search proxy.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking proxy status", "url", r.config.Client.ProxyURL)

	health, err := r.api.Health(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", health.Status)
	if health.Authenticated {
		r.writePlain("Authentication: ✓ TMDB token configured\n")
	} else {
		r.writePlain("Authentication: ✗ TMDB token missing (set %s on the proxy)\n", shared.TokenEnvVar)
	}
	return nil
}
