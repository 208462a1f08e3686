// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

/*
Package services provides suture.Service wrappers for msmd components.

This package adapts the daemon's components to the suture v4 supervision
model. Its one wrapper translates the ListenAndServe/Shutdown pattern of
*http.Server into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

The Reconciler and Scheduler dispatcher implement suture.Service
(Serve(ctx) error) directly and need no wrapper; they are added to the
engine layer as-is. The console fabric's per-server subscriber lifecycle
is managed by internal/registry and internal/console directly, not
through a services wrapper.

Managed Child Service (see internal/registry):
  - Wraps one ManagedServer's stdout/stderr readers and exit-watcher
  - Added to the children layer on start, removed on exit

# Lifecycle Patterns

ListenAndServe Pattern:

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/reconcile, internal/schedule: implement suture.Service directly
*/
package services
