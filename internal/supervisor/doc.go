// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

/*
Package supervisor provides process supervision for msmd using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of every long-running goroutine in the daemon. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation, and
graceful shutdown.

# Overview

The supervisor tree organizes services into two static layers plus one
dynamic layer:

	RootSupervisor ("msmd")
	├── EngineSupervisor ("engine-layer")
	│   ├── ReconcilerService
	│   └── SchedulerDispatchService
	├── APISupervisor ("api-layer")
	│   └── HTTPServerService
	└── ChildrenSupervisor ("children-layer")
	    └── one ManagedChildService per currently-running ManagedServer

This hierarchy ensures that:
  - A crash in one managed child's console reader doesn't affect another
    child, the HTTP API, or the scheduler.
  - A Reconciler panic doesn't take down an in-flight console session.
  - Each layer restarts independently under its own failure counter.

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Services are organized into logical groups
  - Child supervisor failures don't propagate upward
  - Each layer has independent failure counting

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter

# Usage Example

Basic setup in cmd/msmd/main.go:

	import (
	    "log/slog"
	    "github.com/tomtom215/msmd/internal/supervisor"
	    "github.com/tomtom215/msmd/internal/supervisor/services"
	)

	func main() {
	    logger := slog.Default()
	    config := supervisor.DefaultTreeConfig()

	    tree, err := supervisor.NewSupervisorTree(logger, config)
	    if err != nil {
	        log.Fatal(err)
	    }

	    tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))
	    tree.AddEngineService(reconciler) // implements suture.Service directly
	    tree.AddEngineService(dispatcher) // implements suture.Service directly

	    if err := tree.Serve(context.Background()); err != nil {
	        log.Printf("supervisor stopped: %v", err)
	    }
	}

A ManagedServer's I/O goroutines are added to the children layer when it
starts and removed (by token) when it stops or is reaped by the Reconciler:

	token := tree.AddChildService(&registry.ChildService{ServerID: id, Child: child, Fabric: fabric, OnExit: onExit})
	// later, on exit:
	tree.RemoveChildService(token)

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,          // Failures before backoff
	    FailureDecay:     30.0,         // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults.

# What Is NOT Supervised

DuckDB is intentionally not supervised: it is an embedded library, not a
long-running service, and connections are managed entirely within
internal/store. A crash there would require a process restart regardless
of supervision.

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("service did not stop: %v", svc)
	}

# See Also

  - internal/supervisor/services: Service wrappers
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
