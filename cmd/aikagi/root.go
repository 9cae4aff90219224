// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the aikagi CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aikagi",
		Short: "Aikagi - cookie-session authentication server",
		Long: `Aikagi is an authentication server providing signup, login, and
password change over HTTP with single-active-session cookie auth
backed by PostgreSQL.`,
	}

	cmd.PersistentFlags().String("config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())

	return cmd
}

// configPath returns the value of the persistent --config flag.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
