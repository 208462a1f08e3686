// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"time"

	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// Status reconciles serverID's DB snapshot against is-alive(pid) inline
// and returns the result. A disagreement is healed within the same
// scope before returning.
func (e *Engine) Status(ctx context.Context, serverID int64) (models.StatusSnapshot, error) {
	var snap models.StatusSnapshot
	snap.ServerID = serverID

	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		server, err := s.FindServerByID(ctx, serverID)
		if err != nil {
			return err
		}

		alive := server.PID != nil && e.backend.IsAlive(*server.PID)
		if server.Running != alive {
			var pid *int
			var lastStopped *time.Time
			if alive {
				pid = server.PID
			} else {
				now := time.Now()
				lastStopped = &now
			}
			if err := s.UpdateServerRuntimeState(ctx, serverID, alive, pid, nil, lastStopped); err != nil {
				return err
			}
			server.Running = alive
			if !alive {
				server.PID = nil
			}
		}

		snap.Running = server.Running
		snap.PID = server.PID
		if !server.Running && e.registry.IsRunning(serverID) {
			// The Process Registry still tracks a live child for a server
			// the DB now calls stopped: the Reconciler (C6) surfaces and
			// resolves this class of disagreement; Status only reports it.
			snap.Inconsistent = true
		}

		if server.Running && server.PID != nil {
			if server.LastStarted != nil {
				snap.UptimeSeconds = time.Since(*server.LastStarted).Seconds()
			}
			cpu, mem, statErr := e.backend.ProcessStats(*server.PID)
			if statErr == nil {
				snap.CPUPercent = cpu
				snap.MemoryBytes = mem
			}
		}
		return nil
	})

	return snap, err
}
