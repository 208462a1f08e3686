// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"time"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/store"
)

const defaultGraceSeconds = 30

// Stop asks serverID to shut down: "stop" through its console stdin,
// waiting up to graceSeconds; a graceful OS signal if it is still alive;
// a force signal after a further equal grace. The actual persisted
// {running:false} transition happens asynchronously via the
// exit-callback chain once the process is observed to exit (§4.5), not
// here. Calling Stop on a server that is not running changes nothing and
// returns apierr.ErrAlreadyStopped, a Conflict error (Restart ignores it).
func (e *Engine) Stop(ctx context.Context, serverID int64, graceSeconds int) error {
	if graceSeconds <= 0 {
		graceSeconds = defaultGraceSeconds
	}
	grace := time.Duration(graceSeconds) * time.Second

	entry, ok := e.registry.Get(serverID)
	if !ok {
		return apierr.ErrAlreadyStopped
	}

	// Any exit that follows from here is operator-initiated, even if it
	// has to escalate to a graceful or force OS signal and the child
	// exits non-zero as a result — the exit callback must not treat that
	// as a crash and trigger restart-on-crash (§4.7).
	e.markStopping(serverID)

	distribution := e.lookupDistribution(ctx, serverID)

	entry.Fabric.SendCommand(discardSink{}, "stop")
	if waitExit(entry.Child, grace) {
		metrics.RecordServerStop(distribution, nil)
		return nil
	}

	if err := e.backend.SignalGraceful(entry.Child.PID); err != nil {
		metrics.RecordServerStop(distribution, err)
		return apierr.Resource("SignalFailed", "failed to send graceful shutdown signal", err)
	}
	if waitExit(entry.Child, grace) {
		metrics.RecordServerStop(distribution, nil)
		return nil
	}

	if err := e.backend.SignalForce(entry.Child.PID); err != nil {
		metrics.RecordServerStop(distribution, err)
		return apierr.Resource("SignalFailed", "failed to send force shutdown signal", err)
	}
	waitExit(entry.Child, 5*time.Second)
	metrics.RecordServerStop(distribution, nil)
	return nil
}

// lookupDistribution fetches a server's distribution label for metrics,
// falling back to "unknown" if the store lookup fails rather than
// failing the stop itself over a labeling concern.
func (e *Engine) lookupDistribution(ctx context.Context, serverID int64) string {
	var distribution string
	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		server, err := s.FindServerByID(ctx, serverID)
		if err != nil {
			return err
		}
		distribution = server.Distribution
		return nil
	})
	if err != nil || distribution == "" {
		return "unknown"
	}
	return distribution
}

func waitExit(child *platform.Child, timeout time.Duration) bool {
	select {
	case <-child.Exited:
		return true
	case <-time.After(timeout):
		return false
	}
}
