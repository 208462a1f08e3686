// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package console

import (
	"sync"

	"github.com/tomtom215/msmd/internal/models"
)

// DefaultRingCapacity is the number of console lines retained in memory
// per managed server for the history frame sent on subscribe. History is
// ephemeral: it is never persisted, and is lost on supervisor restart.
const DefaultRingCapacity = 2000

// Ring is a fixed-capacity circular buffer of console lines. It is safe
// for concurrent use.
type Ring struct {
	mu   sync.Mutex
	buf  []models.ConsoleLine
	cap  int
	next int // index the next Append writes to
	size int // number of valid entries, <= cap
}

// NewRing allocates a ring of the given capacity. A non-positive capacity
// falls back to DefaultRingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{buf: make([]models.ConsoleLine, capacity), cap: capacity}
}

// Append records one line, evicting the oldest entry once the ring is full.
func (r *Ring) Append(line models.ConsoleLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = line
	r.next = (r.next + 1) % r.cap
	if r.size < r.cap {
		r.size++
	}
}

// Snapshot returns every retained line in oldest-to-newest order.
func (r *Ring) Snapshot() []models.ConsoleLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ConsoleLine, r.size)
	start := (r.next - r.size + r.cap) % r.cap
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%r.cap]
	}
	return out
}
