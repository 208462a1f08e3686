// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import "database/sql"

// Scope is the bounded region within which store operations are
// transactional. It is only ever handed to a WithScope callback and must
// never be retained beyond that callback's lifetime — every method on it
// returns value-typed snapshots, never live rows.
type Scope struct {
	tx *sql.Tx
}
