// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package config loads msmd's configuration through the teacher's
// three-layer koanf stack (defaults struct -> optional YAML file ->
// environment variables, highest priority last), generalized from the
// teacher's per-integration config sections (Tautulli/Plex/NATS/...) down
// to this supervisor's own surface: where servers live on disk, how the
// HTTP/WebSocket transport binds and rate-limits, and how logging is
// configured.
package config
