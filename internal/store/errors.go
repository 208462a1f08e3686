// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/msmd/internal/apierr"
)

// notFound wraps sql.ErrNoRows into the shared apierr taxonomy so that
// callers above the store boundary never branch on database/sql errors
// directly.
func notFound(code, msg string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apierr.NotFound(code, msg)
	}
	return fmt.Errorf("store: %s: %w", msg, err)
}
