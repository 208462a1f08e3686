// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"errors"

	"github.com/tomtom215/msmd/internal/apierr"
)

// Restart stops then starts serverID, with the intermediate
// running=false state visible to any concurrent status/list caller
// between the two steps.
func (e *Engine) Restart(ctx context.Context, serverID int64) error {
	if err := e.Stop(ctx, serverID, defaultGraceSeconds); err != nil && !errors.Is(err, apierr.ErrAlreadyStopped) {
		return err
	}
	_, err := e.Start(ctx, serverID)
	return err
}
