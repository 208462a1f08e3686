// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package registry is the Process Registry (C3): the single
// source-of-truth map from a ManagedServer's ID to the platform.Child
// currently running for it, if any. It mirrors the
// map[string]*managedService idiom the supervisor package's retired
// ServerSupervisor used, generalized from Suture service tokens to raw
// OS processes and keyed by int64 server ID instead of a platform
// string.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/msmd/internal/console"
	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/platform"
)

// ErrAlreadyTracked is returned by Add when the registry already holds an
// entry for the given server ID.
var ErrAlreadyTracked = errors.New("registry: server is already tracked")

// ErrNotTracked is returned by operations that require an existing entry.
var ErrNotTracked = errors.New("registry: server is not tracked")

// Entry bundles everything the rest of the supervisor needs to know about
// one live child process: its OS handle, its console fan-out, and when it
// was started.
type Entry struct {
	ServerID  int64
	Child     *platform.Child
	Fabric    *console.Fabric
	StartedAt time.Time
}

// Registry is a mutex-protected map from server ID to its live Entry. A
// server with no entry is, by definition, not running from the
// supervisor's point of view — the Reconciler (C6) is responsible for
// reconciling that against the store's persisted "running" flag.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]*Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[int64]*Entry)}
}

// Add records a newly spawned child. It fails if the server is already
// tracked — callers (the Lifecycle Engine) must check Get first under
// their own higher-level lock to avoid double-spawning.
func (r *Registry) Add(serverID int64, child *platform.Child, fabric *console.Fabric) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[serverID]; exists {
		return nil, ErrAlreadyTracked
	}

	e := &Entry{ServerID: serverID, Child: child, Fabric: fabric, StartedAt: time.Now()}
	r.entries[serverID] = e
	metrics.SetServersRunning(len(r.entries))
	return e, nil
}

// Get returns the live entry for serverID, if any.
func (r *Registry) Get(serverID int64) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[serverID]
	return e, ok
}

// Remove drops the tracked entry for serverID, e.g. once its exit has
// been observed and handled. It is a no-op if nothing was tracked.
func (r *Registry) Remove(serverID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, serverID)
	metrics.SetServersRunning(len(r.entries))
}

// IsRunning reports whether the registry currently tracks a child for
// serverID.
func (r *Registry) IsRunning(serverID int64) bool {
	_, ok := r.Get(serverID)
	return ok
}

// List returns a snapshot of every currently tracked entry. The returned
// slice is safe to range over without holding any lock.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Count reports how many children are currently tracked.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
