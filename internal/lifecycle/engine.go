// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/msmd/internal/console"
	"github.com/tomtom215/msmd/internal/fetch"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
	"github.com/tomtom215/msmd/internal/supervisor"
)

// crashBackoffBase, crashBackoffCap and cleanRunThreshold implement the
// restart-on-crash backoff algorithm: the delay before an automatic
// restart starts at crashBackoffBase, doubles on each consecutive crash
// up to crashBackoffCap, and resets to crashBackoffBase once a run stays
// up for cleanRunThreshold.
const (
	crashBackoffBase  = 30 * time.Second
	crashBackoffCap   = 10 * time.Minute
	cleanRunThreshold = 10 * time.Minute
)

// ExitHook is a user-registered callback invoked as the third step of the
// exit-callback chain (§4.5), after the stopped state has been persisted
// and subscribers notified. A failing hook is logged and does not stop
// later hooks.
type ExitHook func(ctx context.Context, server models.ManagedServer, exitCode int, clean bool)

type crashState struct {
	nextDelay time.Duration
}

// Engine is the Lifecycle Engine (C5), the sole entry point HTTP
// handlers, CLI commands and the Scheduler dispatcher use to manipulate a
// ManagedServer's running state.
type Engine struct {
	gateway  *store.Gateway
	backend  platform.Backend
	registry *registry.Registry
	tree     *supervisor.SupervisorTree
	jars     *fetch.JarResolver

	ringCapacity int

	mu         sync.Mutex
	crashStats map[int64]*crashState
	hooks      []ExitHook
	tokens     map[int64]suture.ServiceToken
	stopping   map[int64]bool
}

// New builds a Lifecycle Engine. ringCapacity of 0 uses
// console.DefaultRingCapacity.
func New(gateway *store.Gateway, backend platform.Backend, reg *registry.Registry, tree *supervisor.SupervisorTree, jars *fetch.JarResolver, ringCapacity int) *Engine {
	return &Engine{
		gateway:      gateway,
		backend:      backend,
		registry:     reg,
		tree:         tree,
		jars:         jars,
		ringCapacity: ringCapacity,
		crashStats:   make(map[int64]*crashState),
		stopping:     make(map[int64]bool),
	}
}

// markStopping flags serverID as being stopped by an operator call, so the
// exit-callback chain's restart-on-crash step (§4.7) does not mistake the
// forced/graceful signal escalation's non-zero exit for a crash.
func (e *Engine) markStopping(serverID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopping[serverID] = true
}

// clearStopping drops serverID's operator-initiated-stop flag once the
// exit callback has consumed it.
func (e *Engine) clearStopping(serverID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	wasStopping := e.stopping[serverID]
	delete(e.stopping, serverID)
	return wasStopping
}

// RegisterExitHook appends hook to the exit-callback chain's third step.
// Hooks run in registration order.
func (e *Engine) RegisterExitHook(hook ExitHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

func (e *Engine) newFabric(serverID int64) *console.Fabric {
	capacity := e.ringCapacity
	if capacity <= 0 {
		capacity = console.DefaultRingCapacity
	}
	return console.NewFabric(serverID, capacity)
}
