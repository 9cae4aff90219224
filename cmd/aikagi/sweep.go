// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package main

import (
	"github.com/spf13/cobra"

	authpg "github.com/aikagi/aikagi/internal/auth/postgres"
	"github.com/aikagi/aikagi/internal/config"
	"github.com/aikagi/aikagi/internal/logging"
	"github.com/aikagi/aikagi/internal/store"
)

// NewSweepCmd creates the sweep subcommand. Expired sessions are rejected
// lazily on use; this removes the leftover rows, typically from cron.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions",
		RunE:  runSweep,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("log-format", config.Default().LogFormat, "log format: text or json")

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("aikagi", version, cfg.LogFormat)

	ctx := cmd.Context()
	pool, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions := authpg.NewSessionRepository(pool)
	count, err := sessions.DeleteExpired(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("removed %d expired sessions\n", count)
	return nil
}
