// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package config

import "time"

// Config is msmd's full configuration surface, loaded via LoadWithKoanf.
type Config struct {
	Daemon   DaemonConfig   `koanf:"daemon"`
	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Console  ConsoleConfig  `koanf:"console"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DaemonConfig controls where msmd keeps server working directories and
// how it reconciles/schedules.
type DaemonConfig struct {
	// DataRoot is the root all ManagedServer working directories live
	// under; internal/lifecycle's delete-path traversal guard is anchored
	// here.
	DataRoot string `koanf:"data_root"`

	ReconcilePeriod time.Duration `koanf:"reconcile_period"`
	SweepInterval   time.Duration `koanf:"sweep_interval"`
	SweepTTL        time.Duration `koanf:"sweep_ttl"`

	RingCapacity int `koanf:"ring_capacity"`
}

// DatabaseConfig points at the embedded DuckDB store file.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// HTTPConfig controls the JSON REST + WebSocket transport (internal/api).
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// CORSOrigins is the allow-list for browser clients; empty means
	// same-origin only.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitPerMinute bounds requests per client IP, enforced by
	// go-chi/httprate.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ConsoleConfig holds console heartbeat settings. They are loaded but not
// passed on: console.Fabric always uses console.DefaultHeartbeatInterval
// and console.DefaultMaxMissedHeartbeats.
type ConsoleConfig struct {
	HeartbeatInterval   time.Duration `koanf:"heartbeat_interval"`
	MaxMissedHeartbeats int           `koanf:"max_missed_heartbeats"`
}

// LoggingConfig controls the zerolog sink (internal/logging).
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "console" or "json"
}

// defaultConfig returns sensible production defaults, overridden in
// layers by an optional config file and then environment variables.
func defaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			DataRoot:        "/var/lib/msmd",
			ReconcilePeriod: 10 * time.Second,
			SweepInterval:   30 * time.Second,
			SweepTTL:        10 * time.Minute,
			RingCapacity:    2000,
		},
		Database: DatabaseConfig{
			Path: "/var/lib/msmd/msm.duckdb",
		},
		HTTP: HTTPConfig{
			Addr:               "127.0.0.1:8642",
			CORSOrigins:        nil,
			RateLimitPerMinute: 120,
			ShutdownTimeout:    10 * time.Second,
		},
		Console: ConsoleConfig{
			HeartbeatInterval:   20 * time.Second,
			MaxMissedHeartbeats: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
