// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package registry

import (
	"bufio"
	"context"
	"io"

	"github.com/tomtom215/msmd/internal/console"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/platform"
)

// ChildService pumps one managed child's stdout and stderr into its
// console Fabric and waits for the process to exit, so a crashing or
// misbehaving child only brings down its own goroutines instead of the
// rest of the supervisor — the same per-unit fault isolation the
// supervisor package's suture.Supervisor tree provides one level up, here
// pushed down to individual OS processes. It implements suture.Service
// and is meant to be registered with SupervisorTree.AddChildService.
type ChildService struct {
	ServerID int64
	Child    *platform.Child
	Fabric   *console.Fabric

	// OnExit is invoked once, after both output streams have reached EOF
	// and the process has exited, with the observed exit code. The
	// Lifecycle Engine and Reconciler use this to clear the registry
	// entry and persist the final state.
	OnExit func(serverID int64, exitCode int, ok bool)
}

// Serve pumps output until the child exits or ctx is cancelled. A
// cancelled context does not kill the child — that is the Lifecycle
// Engine's job via Backend.SignalGraceful/SignalForce — it only stops
// this service from continuing to read, which happens naturally once
// the pipes are closed by the child's own exit.
func (c *ChildService) Serve(ctx context.Context) error {
	done := make(chan struct{}, 2)

	go c.pump(ctx, c.Child.Stdout, models.StreamStdout, done)
	go c.pump(ctx, c.Child.Stderr, models.StreamStderr, done)

	select {
	case <-c.Child.Exited:
	case <-ctx.Done():
	}

	// Drain both pump goroutines before reporting exit so the fabric's
	// final ring state reflects everything the child printed.
	<-done
	<-done

	exitCode, ok := 0, false
	if c.Child.ExitCode != nil {
		exitCode, ok = c.Child.ExitCode()
	}
	c.Fabric.MarkExited(exitCode, ok)

	if c.OnExit != nil {
		c.OnExit(c.ServerID, exitCode, ok)
	}

	logging.Info().Int64("server_id", c.ServerID).Int("exit_code", exitCode).Msg("managed server process exited")
	return nil
}

func (c *ChildService) pump(ctx context.Context, r io.Reader, stream models.ConsoleStream, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.Fabric.Append(stream, scanner.Text())
	}
}
