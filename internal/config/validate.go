// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package config

import "fmt"

// Validate checks that the loaded configuration is internally
// consistent before anything is wired up against it.
func (c *Config) Validate() error {
	if c.Daemon.DataRoot == "" {
		return fmt.Errorf("config: daemon.data_root must not be empty")
	}
	if c.Daemon.ReconcilePeriod <= 0 {
		return fmt.Errorf("config: daemon.reconcile_period must be positive")
	}
	if c.Daemon.SweepInterval <= 0 {
		return fmt.Errorf("config: daemon.sweep_interval must be positive")
	}
	if c.Daemon.SweepTTL <= 0 {
		return fmt.Errorf("config: daemon.sweep_ttl must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path must not be empty")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("config: http.addr must not be empty")
	}
	if c.HTTP.RateLimitPerMinute <= 0 {
		return fmt.Errorf("config: http.rate_limit_per_minute must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	return nil
}
