// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package console

// Sink is one subscriber's outbound connection, implemented by the
// WebSocket transport in internal/api. The Fabric never blocks on a slow
// sink: Enqueue must return immediately, reporting whether the frame was
// accepted.
type Sink interface {
	// ID identifies this sink for deterministic fan-out ordering.
	ID() uint64

	// Enqueue hands frame to the sink's own outbound buffer. It must not
	// block. A false return means the sink's buffer is full and the
	// fabric will disconnect it as lagging.
	Enqueue(frame Frame) bool

	// Close tears the sink down with a human-readable reason (e.g.
	// "lagging", "heartbeat timeout", "server stopped").
	Close(reason string)
}
