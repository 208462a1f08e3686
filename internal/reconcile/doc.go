// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package reconcile is the Reconciler (C6): a periodic task that keeps
// the store's {running, pid} view of every ManagedServer honest against
// operating-system reality, and frees console rings for children the
// Process Registry no longer tracks. It implements suture.Service
// directly (Serve(ctx) error), the same shape internal/schedule's
// Dispatcher uses, grounded on the teacher's ticker-loop service pattern
// generalized from a single fixed tick function to two independent sweep
// routines on their own intervals.
package reconcile
