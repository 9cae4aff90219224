// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/aikagi/aikagi/internal/auth"
)

// Config holds all runtime settings for the server.
type Config struct {
	// Listen is the address the HTTP API binds to.
	Listen string `koanf:"listen"`
	// MetricsListen is the address the observability endpoints bind to.
	MetricsListen string `koanf:"metrics_listen"`
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`
	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `koanf:"log_format"`
	// SecureCookies marks session cookies Secure. Leave false only for
	// local development over plain HTTP.
	SecureCookies bool `koanf:"secure_cookies"`
	// SignupDelay is the fixed pause applied to every signup attempt.
	SignupDelay time.Duration `koanf:"signup_delay"`
	// SessionTTL is the lifetime of an issued session.
	SessionTTL time.Duration `koanf:"session_ttl"`
	// BcryptCost is the bcrypt work factor for new password hashes.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:        ":8686",
		MetricsListen: ":9600",
		LogFormat:     "text",
		SecureCookies: false,
		SignupDelay:   auth.DefaultSignupDelay,
		SessionTTL:    auth.SessionTTL,
		BcryptCost:    auth.DefaultWorkFactor,
	}
}

// Load builds a Config from defaults, the YAML file at path (when path is
// non-empty), and the given flag set (when non-nil). Later sources win.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database_url").
			Errorf("database_url is required")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log_format").
			Errorf("log_format must be %q or %q, got %q", "text", "json", c.LogFormat)
	}
	if c.SignupDelay < 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "signup_delay").
			Errorf("signup_delay must not be negative")
	}
	if c.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "session_ttl").
			Errorf("session_ttl must be positive")
	}
	if c.BcryptCost < 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "bcrypt_cost").
			Errorf("bcrypt_cost must not be negative")
	}
	return nil
}
