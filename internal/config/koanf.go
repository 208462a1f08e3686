// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched for, in order
// of priority. The first one found wins.
var DefaultConfigPaths = []string{
	"msmd.yaml",
	"msmd.yml",
	"/etc/msmd/msmd.yaml",
	"/etc/msmd/msmd.yml",
}

// ConfigPathEnvVar overrides the search list with one explicit path.
const ConfigPathEnvVar = "MSMD_CONFIG_PATH"

// LoadWithKoanf loads configuration in three layers, highest priority
// last: built-in defaults, an optional YAML file, then MSMD_-prefixed
// environment variables (MSMD_HTTP_ADDR -> http.addr).
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("MSMD_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// envTransformFunc turns MSMD_HTTP_RATE_LIMIT_PER_MINUTE into
// http.rate_limit_per_minute: strip the MSMD_ prefix, lowercase, and
// replace the first underscore-joined
// segment's separator with a dot to select the top-level section.
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, "MSMD_")
	key = strings.ToLower(key)
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return key
	}
	return parts[0] + "." + parts[1]
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
