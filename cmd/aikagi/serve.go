// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aikagi/aikagi/internal/auth"
	authpg "github.com/aikagi/aikagi/internal/auth/postgres"
	"github.com/aikagi/aikagi/internal/config"
	"github.com/aikagi/aikagi/internal/httpapi"
	"github.com/aikagi/aikagi/internal/logging"
	"github.com/aikagi/aikagi/internal/observability"
	"github.com/aikagi/aikagi/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication server",
		Long: `Start the HTTP authentication server and the observability
endpoints, connected to PostgreSQL.`,
		RunE: runServe,
	}

	defaults := config.Default()
	cmd.Flags().String("listen", defaults.Listen, "HTTP API listen address")
	cmd.Flags().String("metrics-listen", defaults.MetricsListen, "metrics and health listen address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("log-format", defaults.LogFormat, "log format: text or json")
	cmd.Flags().Bool("secure-cookies", defaults.SecureCookies, "mark session cookies Secure")
	cmd.Flags().Duration("signup-delay", defaults.SignupDelay, "fixed delay applied to signup attempts")
	cmd.Flags().Duration("session-ttl", defaults.SessionTTL, "session lifetime")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("aikagi", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	svc, err := auth.NewService(users, sessions, hasher,
		auth.WithSignupDelay(cfg.SignupDelay),
		auth.WithSessionTTL(cfg.SessionTTL),
	)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.MetricsListen, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErr, err := obs.Start()
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(svc, obs.Metrics(), cfg.SecureCookies)
	api := httpapi.NewServer(cfg.Listen, handler.Routes())
	apiErr, err := api.Start()
	if err != nil {
		stopServers(nil, obs)
		return err
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-apiErr:
		if err != nil {
			stopServers(api, obs)
			return oops.With("server", "api").Wrap(err)
		}
	case err := <-obsErr:
		if err != nil {
			stopServers(api, obs)
			return oops.With("server", "observability").Wrap(err)
		}
	}

	return stopServers(api, obs)
}

// stopServers shuts both servers down, returning the first error.
func stopServers(api *httpapi.Server, obs *observability.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if api != nil {
		if err := api.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if obs != nil {
		if err := obs.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
