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

// handleExit is the Process Registry's exit-watcher callback (§4.5): it
// runs (a) persist stopped state, (b) notify subscribers — already done
// by the time this fires, since registry.ChildService.Serve calls
// Fabric.MarkExited before invoking OnExit — and (c) run registered
// hooks, all tolerant of a single callback's failure.
func (e *Engine) handleExit(serverID int64, exitCode int, ok bool) {
	ctx := context.Background()
	clean := ok && exitCode == 0
	operatorStop := e.clearStopping(serverID)

	e.registry.Remove(serverID)

	e.mu.Lock()
	token, hasToken := e.tokens[serverID]
	delete(e.tokens, serverID)
	e.mu.Unlock()
	if hasToken {
		if err := e.tree.RemoveChildService(token); err != nil {
			logging.Warn().Err(err).Int64("server_id", serverID).Msg("lifecycle: failed to remove child service")
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
		logging.Warn().Err(err).Int64("server_id", serverID).Msg("lifecycle: exit callback: persist stopped state failed")
		if server.ID == 0 {
			// The server record itself could not be read: there is no
			// snapshot to hand to the hooks.
			return
		}
	}

	e.mu.Lock()
	hooks := append([]ExitHook(nil), e.hooks...)
	e.mu.Unlock()

	for _, hook := range hooks {
		runHookSafely(ctx, hook, server, exitCode, clean)
	}

	e.maybeRestartOnCrash(server, clean, operatorStop)
}

func runHookSafely(ctx context.Context, hook ExitHook, server models.ManagedServer, exitCode int, clean bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn().Int64("server_id", server.ID).Interface("panic", r).Msg("lifecycle: exit hook panicked")
		}
	}()
	hook(ctx, server, exitCode, clean)
}

// maybeRestartOnCrash implements the restart-on-crash backoff algorithm:
// base 30s, doubled per consecutive crash up to a 10-minute cap, reset
// once a run has stayed up for 10 clean minutes. It never fires for an
// operator-initiated stop (§4.7), even when that stop had to escalate to
// a graceful or force OS signal and the child exited non-zero.
func (e *Engine) maybeRestartOnCrash(server models.ManagedServer, clean, operatorStop bool) {
	if clean || operatorStop || !server.RestartOnCrash {
		return
	}

	e.mu.Lock()
	cs, ok := e.crashStats[server.ID]
	if !ok {
		cs = &crashState{nextDelay: crashBackoffBase}
		e.crashStats[server.ID] = cs
	}
	if server.LastStarted != nil && time.Since(*server.LastStarted) >= cleanRunThreshold {
		cs.nextDelay = crashBackoffBase
	}
	delay := cs.nextDelay
	cs.nextDelay *= 2
	if cs.nextDelay > crashBackoffCap {
		cs.nextDelay = crashBackoffCap
	}
	e.mu.Unlock()

	logging.Info().Int64("server_id", server.ID).Dur("delay", delay).Msg("lifecycle: scheduling restart-on-crash")

	go func() {
		time.Sleep(delay)
		if _, err := e.Start(context.Background(), server.ID); err != nil {
			logging.Warn().Err(err).Int64("server_id", server.ID).Msg("lifecycle: restart-on-crash failed")
		}
	}()
}
