// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package platform abstracts the host operating system behind one
// Backend contract. The concrete implementation is selected once at
// process startup from runtime.GOOS and is used process-wide; nothing
// above this package branches on GOOS again.
package platform

import (
	"context"
	"io"
	"runtime"
)

// SpawnRequest describes a child process to launch.
type SpawnRequest struct {
	WorkDir string
	Argv    []string
	// Env is the caller's additions only. Backend.Spawn merges these over
	// the supervisor's own os.Environ() — it must never be used as a bare
	// replacement, or PATH/JAVA_HOME and friends are stripped from the
	// child.
	Env map[string]string
}

// Child is the live handle returned by a successful Spawn. Stdout/Stderr
// are read to EOF by the console fabric's reader tasks; Stdin is written
// one line at a time by command injection.
type Child struct {
	PID    int
	Stdout io.ReadCloser
	Stderr io.ReadCloser
	Stdin  io.WriteCloser
	// Exited is closed when the process has terminated. ExitCode is only
	// meaningful after Exited is closed.
	Exited   <-chan struct{}
	ExitCode func() (int, bool) // ok=false if exit code could not be determined
}

// Runtime describes one discovered Java runtime candidate.
type Runtime struct {
	Path          string
	MajorVersion  int
	Vendor        string
	IsDevelopmentKit bool
}

// PortCheck is the result of a free-port probe.
type PortCheck struct {
	Free      bool
	HolderPID int // 0 if unknown or free
}

// Backend is the capability set every concrete OS backend must implement.
type Backend interface {
	// Spawn launches argv in workdir with env merged over the
	// supervisor's own environment, in a new process group: Setpgid on
	// POSIX, so a signal to the group reaches the whole tree;
	// CREATE_NEW_PROCESS_GROUP on Windows, with no job object.
	Spawn(ctx context.Context, req SpawnRequest) (*Child, error)

	// SignalGraceful asks pid to shut down: SIGTERM to its process group
	// on POSIX, a CTRL_BREAK_EVENT to its process group on Windows.
	SignalGraceful(pid int) error

	// SignalForce unconditionally terminates pid.
	SignalForce(pid int) error

	// IsAlive consults the OS process table. Must not block more than
	// tens of milliseconds.
	IsAlive(pid int) bool

	// ProcessStats returns CPU/memory usage for a live pid, used by the
	// Lifecycle Engine's status operation.
	ProcessStats(pid int) (cpuPercent float64, memoryBytes uint64, err error)

	// DiscoverRuntimes scans known locations for Java runtimes.
	DiscoverRuntimes(ctx context.Context) ([]Runtime, error)

	// FreePort attempts a bind-then-close on loopback; on failure,
	// identifies the holding process via platform tooling.
	FreePort(port int) (PortCheck, error)

	// DataRoot returns the platform-specific application-data directory.
	DataRoot() (string, error)

	// IsElevated reports whether the supervisor is running as root
	// (POSIX) or an elevated administrator (Windows).
	IsElevated() bool
}

// New returns the concrete Backend for the running host, selected once
// from runtime.GOOS. internal/registry, internal/lifecycle and
// internal/reconcile depend only on the Backend interface above, never on
// this selection.
func New() Backend {
	switch runtime.GOOS {
	case "windows":
		return newWindowsBackend()
	default:
		return newUnixBackend()
	}
}
