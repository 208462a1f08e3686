// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package models

// ApiKey is a catalog entry for one issued API key. The raw secret exists
// only at issuance time (see internal/auth) and is never persisted — only
// a one-way hash of it is stored here, looked up by the public Prefix.
type ApiKey struct {
	ID     int64  `json:"id" db:"id"`
	Label  string `json:"label" db:"label"`
	Prefix string `json:"prefix" db:"prefix"`
	Hash   string `json:"-" db:"hash"`

	// Permissions is the permission set granted to this key. An empty set
	// means "all mutating routes", matching the spec's single-secret model.
	Permissions []string `json:"permissions,omitempty" db:"-"`
	Active      bool     `json:"active" db:"active"`
}

// ConsoleStream identifies which stream a ConsoleLine came from.
type ConsoleStream string

const (
	StreamStdout     ConsoleStream = "stdout"
	StreamStderr     ConsoleStream = "stderr"
	StreamStdinEcho  ConsoleStream = "stdin-echo"
	StreamSystem     ConsoleStream = "system"
)

// ConsoleLine is held only in a per-server in-memory ring
// (internal/console); it is never persisted to the store.
type ConsoleLine struct {
	Timestamp int64         `json:"timestamp"` // unix millis, wall clock
	Stream    ConsoleStream `json:"stream"`
	Text      string        `json:"line"`
}
