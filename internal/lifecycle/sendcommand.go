// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/console"
)

// discardSink is used when the Lifecycle Engine itself originates a
// console command (the "stop" shutdown command, or a programmatic
// SendCommand call with no WebSocket client attached) and there is no
// real subscriber to acknowledge.
type discardSink struct{}

func (discardSink) ID() uint64               { return 0 }
func (discardSink) Enqueue(console.Frame) bool { return true }
func (discardSink) Close(string)             {}

// SendCommand writes command to serverID's stdin through its console
// fabric, echoing it to any live subscribers.
func (e *Engine) SendCommand(_ context.Context, serverID int64, command string) error {
	entry, ok := e.registry.Get(serverID)
	if !ok {
		return apierr.Conflict("NotRunning", "server is not running", nil)
	}
	entry.Fabric.SendCommand(discardSink{}, command)
	return nil
}
