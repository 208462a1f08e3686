// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package lifecycle is the Lifecycle Engine (C5): the single public
// contract HTTP handlers, CLI commands, and the Scheduler dispatcher call
// to start, stop, restart, create, import, and delete a ManagedServer.
// Every operation opens store.Gateway scopes only for its bookkeeping
// (Create, Import, Start and Delete open one before and one after their
// blocking step) and never holds a scope across a blocking OS call —
// spawning a JVM, waiting out a stop grace period, or downloading a jar
// all happen outside any open scope, the same separation the teacher's
// ServerSupervisor.StartAll keeps between "update my own state" and
// "wait on a subprocess".
package lifecycle
