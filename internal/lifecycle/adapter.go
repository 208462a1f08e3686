// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import "context"

// ScheduleAdapter narrows Engine to the error-only Start signature the
// Scheduler dispatcher's Engine interface expects. HTTP handlers and CLI
// commands call Engine.Start directly and use the returned pid; the
// dispatcher only cares whether the action succeeded.
type ScheduleAdapter struct {
	*Engine
}

// NewScheduleAdapter wraps engine for use as schedule.Dispatcher's Engine
// dependency.
func NewScheduleAdapter(engine *Engine) ScheduleAdapter {
	return ScheduleAdapter{Engine: engine}
}

// Start discards the spawned pid, satisfying the Scheduler's
// error-only Engine contract.
func (a ScheduleAdapter) Start(ctx context.Context, serverID int64) error {
	_, err := a.Engine.Start(ctx, serverID)
	return err
}
