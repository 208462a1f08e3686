// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package console

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/models"
)

// DefaultHeartbeatInterval and DefaultMaxMissedHeartbeats are the
// heartbeat settings every Fabric is built with; Tick disconnects a sink
// once it has gone more than DefaultMaxMissedHeartbeats ticks without a
// pong.
const (
	DefaultHeartbeatInterval   = 20 * time.Second
	DefaultMaxMissedHeartbeats = 2
)

var nextSinkID uint64

// NextSinkID returns a process-wide unique, monotonically increasing sink
// identifier, mirroring the atomic counter idiom the WebSocket hub this
// package is modeled on uses for deterministic client ordering.
func NextSinkID() uint64 {
	return atomic.AddUint64(&nextSinkID, 1)
}

type subscriber struct {
	sink   Sink
	missed int
}

// Fabric is the console fan-out for one managed child: a ring buffer of
// recent output plus a set of live subscribers. One Fabric exists per
// currently-running ManagedServer; it is discarded when the child exits.
type Fabric struct {
	serverID int64
	ring     *Ring

	mu   sync.Mutex
	subs map[uint64]*subscriber

	stdin io.Writer // set once the child's stdin pipe is known

	heartbeatInterval   time.Duration
	maxMissedHeartbeats int

	lastActivity atomic.Int64 // unix nanos, for the dead-child sweep
}

// NewFabric allocates a fabric with the given ring capacity (0 uses
// DefaultRingCapacity).
func NewFabric(serverID int64, ringCapacity int) *Fabric {
	f := &Fabric{
		serverID:            serverID,
		ring:                NewRing(ringCapacity),
		subs:                make(map[uint64]*subscriber),
		heartbeatInterval:   DefaultHeartbeatInterval,
		maxMissedHeartbeats: DefaultMaxMissedHeartbeats,
	}
	f.touch()
	return f
}

// SetStdin attaches the child process's stdin pipe, enabling SendCommand.
// Called once by the Lifecycle Engine immediately after a successful spawn.
func (f *Fabric) SetStdin(w io.Writer) {
	f.mu.Lock()
	f.stdin = w
	f.mu.Unlock()
}

func (f *Fabric) touch() {
	f.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity reports when this fabric last saw output or a command,
// the signal the reconciler's dead-child sweep uses to decide whether a
// server that stopped emitting output without a clean exit is stuck.
func (f *Fabric) LastActivity() time.Time {
	return time.Unix(0, f.lastActivity.Load())
}

// Subscribe registers sink and immediately sends it a history frame
// covering every line currently retained in the ring, establishing the
// history-then-live-tail ordering guarantee (testable property #7).
func (f *Fabric) Subscribe(sink Sink) {
	lines := f.ring.Snapshot()
	dtos := make([]LineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = lineToDTO(l)
	}

	f.mu.Lock()
	f.subs[sink.ID()] = &subscriber{sink: sink}
	f.mu.Unlock()
	metrics.ConsoleSubscribers.Inc()

	sink.Enqueue(Frame{Type: FrameHistory, Lines: dtos})
}

// Unsubscribe removes sink without closing it; the transport layer has
// already torn the connection down by the time it calls this.
func (f *Fabric) Unsubscribe(sink Sink) {
	f.mu.Lock()
	_, existed := f.subs[sink.ID()]
	delete(f.subs, sink.ID())
	f.mu.Unlock()
	if existed {
		metrics.ConsoleSubscribers.Dec()
	}
}

// Append records one line of process output and fans it out to every
// live subscriber, in ascending sink-ID order so fan-out is deterministic
// regardless of Go's map iteration order.
func (f *Fabric) Append(stream models.ConsoleStream, text string) {
	line := models.ConsoleLine{Timestamp: time.Now().UnixMilli(), Stream: stream, Text: text}
	f.ring.Append(line)
	f.touch()

	dto := lineToDTO(line)
	frame := Frame{Type: FrameOutput, Data: &dto}
	f.broadcast(frame, nil)
}

// broadcast sends frame to every subscriber except skip (if non-nil),
// disconnecting any sink whose buffer is already full.
func (f *Fabric) broadcast(frame Frame, skip Sink) {
	f.mu.Lock()
	ids := make([]uint64, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	subs := make([]*subscriber, len(ids))
	for i, id := range ids {
		subs[i] = f.subs[id]
	}
	f.mu.Unlock()

	var lagging []Sink
	for _, sub := range subs {
		if skip != nil && sub.sink.ID() == skip.ID() {
			continue
		}
		if !sub.sink.Enqueue(frame) {
			lagging = append(lagging, sub.sink)
			metrics.RecordConsoleFrameDropped(string(frame.Type))
		}
	}
	for _, sink := range lagging {
		f.disconnect(sink, "lagging")
	}
}

func (f *Fabric) disconnect(sink Sink, reason string) {
	f.mu.Lock()
	delete(f.subs, sink.ID())
	f.mu.Unlock()
	metrics.ConsoleSubscribers.Dec()
	sink.Close(reason)
}

// SendCommand writes a line to the child's stdin, echoes it into the
// ring as a stdin-origin entry, and acknowledges the result to the
// originating sink only.
func (f *Fabric) SendCommand(sink Sink, command string) {
	f.mu.Lock()
	stdin := f.stdin
	f.mu.Unlock()

	if stdin == nil {
		sink.Enqueue(Frame{Type: FrameCommandAck, Success: false, Command: command, Message: "server is not running"})
		return
	}

	f.touch()
	_, err := fmt.Fprintf(stdin, "%s\n", command)
	line := models.ConsoleLine{Timestamp: time.Now().UnixMilli(), Stream: models.StreamStdinEcho, Text: command}
	f.ring.Append(line)

	ack := Frame{Type: FrameCommandAck, Command: command}
	if err != nil {
		ack.Success = false
		ack.Message = err.Error()
	} else {
		ack.Success = true
	}
	sink.Enqueue(ack)

	dto := lineToDTO(line)
	f.broadcast(Frame{Type: FrameOutput, Data: &dto}, sink)
}

// HandlePong resets a sink's missed-heartbeat counter. The transport
// calls this whenever it receives a pong frame.
func (f *Fabric) HandlePong(sinkID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[sinkID]; ok {
		sub.missed = 0
	}
}

// Tick sends a heartbeat frame to every subscriber and disconnects any
// sink that has missed DefaultMaxMissedHeartbeats consecutive ticks
// without a pong. Nothing in this module calls Tick on a timer: the
// console WebSocket in internal/api sends protocol-level ping frames
// instead, so live connections receive no heartbeat frames and are not
// disconnected by Tick.
func (f *Fabric) Tick() {
	f.mu.Lock()
	var stale []Sink
	for id, sub := range f.subs {
		sub.missed++
		if sub.missed > f.maxMissedHeartbeats {
			stale = append(stale, sub.sink)
			delete(f.subs, id)
		}
	}
	f.mu.Unlock()

	for _, sink := range stale {
		metrics.ConsoleSubscribers.Dec()
		sink.Close("heartbeat timeout")
	}
	f.broadcast(Frame{Type: FrameHeartbeat}, nil)
}

// MarkExited appends a synthetic system line recording the child's exit
// and tells every subscriber the stream is over, then drops them all —
// a Fabric is single-use for the lifetime of one child process.
func (f *Fabric) MarkExited(exitCode int, clean bool) {
	msg := fmt.Sprintf("process exited with code %d", exitCode)
	if !clean {
		msg = fmt.Sprintf("process exited unexpectedly with code %d", exitCode)
	}
	f.ring.Append(models.ConsoleLine{Timestamp: time.Now().UnixMilli(), Stream: models.StreamSystem, Text: msg})

	f.mu.Lock()
	subs := make([]*subscriber, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.subs = make(map[uint64]*subscriber)
	f.mu.Unlock()
	if len(subs) > 0 {
		metrics.ConsoleSubscribers.Sub(float64(len(subs)))
	}

	code := exitCode
	frame := Frame{Type: FrameServerStopped, ExitCode: &code, Message: msg}
	for _, sub := range subs {
		sub.sink.Enqueue(frame)
		sub.sink.Close("server stopped")
	}
}

// ServerID reports which managed server this fabric belongs to.
func (f *Fabric) ServerID() int64 { return f.serverID }

// SubscriberCount reports the live subscriber count, used by the
// reconciler's dead-child sweep to decide whether a fabric is orphaned.
func (f *Fabric) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
