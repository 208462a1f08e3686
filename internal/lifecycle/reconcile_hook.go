// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"time"

	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// HealDeadProcess runs the exit-callback chain (§4.5) for a server the
// Reconciler found marked running in the store with no live OS process
// behind it — "exited with code unknown" in the spec's words, since no
// platform.Child survived to report a real exit code (the supervisor may
// have restarted since this server was last spawned by it). It is the
// out-of-band counterpart to handleExit, which runs for children this
// process itself spawned and is still watching.
func (e *Engine) HealDeadProcess(ctx context.Context, serverID int64) {
	operatorStop := e.clearStopping(serverID)
	e.registry.Remove(serverID)

	e.mu.Lock()
	token, hasToken := e.tokens[serverID]
	delete(e.tokens, serverID)
	e.mu.Unlock()
	if hasToken {
		if err := e.tree.RemoveChildService(token); err != nil {
			logging.Warn().Err(err).Int64("server_id", serverID).Msg("lifecycle: failed to remove child service during reconciliation")
		}
	}

	var server models.ManagedServer
	now := time.Now()
	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, serverID)
		if err != nil {
			return err
		}
		return s.UpdateServerRuntimeState(ctx, serverID, false, nil, nil, &now)
	})
	if err != nil {
		logging.Warn().Err(err).Int64("server_id", serverID).Msg("lifecycle: reconciler: persist stopped state failed")
		return
	}

	e.mu.Lock()
	hooks := append([]ExitHook(nil), e.hooks...)
	e.mu.Unlock()
	for _, hook := range hooks {
		runHookSafely(ctx, hook, server, 0, false)
	}

	e.maybeRestartOnCrash(server, false, operatorStop)
}
