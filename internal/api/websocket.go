// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/msmd/internal/console"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
)

const (
	consoleWriteWait      = 10 * time.Second
	consolePongWait       = 60 * time.Second
	consolePingPeriod     = (consolePongWait * 9) / 10
	consoleMaxMessageSize = 64 * 1024
)

var consoleSecurityLog = logging.NewSecurityLogger()

// wsSink adapts one gorilla/websocket connection to console.Sink, the
// same middleman role internal/websocket.Client plays for the teacher's
// analytics hub — generalized here from a broadcast hub to one Fabric
// per managed server.
type wsSink struct {
	id     uint64
	conn   *websocket.Conn
	fabric *console.Fabric
	send   chan console.Frame
	closed atomic.Bool
}

func newWSSink(conn *websocket.Conn, fabric *console.Fabric) *wsSink {
	return &wsSink{
		id:     console.NextSinkID(),
		conn:   conn,
		fabric: fabric,
		send:   make(chan console.Frame, 256),
	}
}

func (s *wsSink) ID() uint64 { return s.id }

func (s *wsSink) Enqueue(frame console.Frame) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *wsSink) Close(reason string) {
	if s.closed.Swap(true) {
		return
	}
	logging.Debug().Uint64("sink_id", s.id).Str("reason", reason).Msg("api: console sink closing")
	close(s.send)
}

// incomingMessage is the one client->server envelope the console
// WebSocket accepts: either a command to inject into the child's stdin,
// or a pong reply to a heartbeat.
type incomingMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
}

// readPump pumps client frames (commands, pongs) into the Fabric until
// the connection closes.
func (s *wsSink) readPump() {
	defer func() {
		s.fabric.Unsubscribe(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(consoleMaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(consolePongWait))
	s.conn.SetPongHandler(func(string) error {
		s.fabric.HandlePong(s.id)
		return s.conn.SetReadDeadline(time.Now().Add(consolePongWait))
	})

	for {
		var msg incomingMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Msg("api: console websocket closed unexpectedly")
			}
			return
		}
		switch msg.Type {
		case "command":
			s.fabric.SendCommand(s, msg.Command)
		case "pong":
			s.fabric.HandlePong(s.id)
		}
	}
}

// writePump drains the sink's outbound buffer to the connection and
// drives the ping ticker, mirroring internal/websocket.Client.writePump.
func (s *wsSink) writePump() {
	ticker := time.NewTicker(consolePingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(consoleWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				logging.Warn().Err(err).Msg("api: console websocket write failed")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(consoleWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) consoleUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin rejects connections with no Origin header (no
// legitimate browser WebSocket omits it) and any origin not on the
// configured allow-list, logging every rejection as a security event.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		consoleSecurityLog.LogOriginRejected("(missing)", r.RemoteAddr)
		metrics.RecordWSOriginRejection()
		return false
	}
	if len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	consoleSecurityLog.LogOriginRejected(origin, r.RemoteAddr)
	metrics.RecordWSOriginRejection()
	return false
}

// ConsoleWebSocket handles GET /api/v1/servers/{serverID}/console: the
// live console stream for one running managed server, upgrading to a
// WebSocket and subscribing a wsSink to its console.Fabric for the
// connection's lifetime.
func (h *Handler) ConsoleWebSocket(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	entry, tracked := h.registry.Get(id)
	if !tracked {
		rw.BadRequest("ServerNotRunning", "server is not currently running", nil)
		return
	}

	upgrader := h.consoleUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("api: console websocket upgrade failed")
		return
	}

	sink := newWSSink(conn, entry.Fabric)
	entry.Fabric.Subscribe(sink)

	go sink.writePump()
	sink.readPump()
}
