// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/msmd/internal/lifecycle"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
)

// DefaultReconcilePeriod is how often the running/pid healing pass runs.
const DefaultReconcilePeriod = 10 * time.Second

// DefaultSweepInterval is how often the dead-child ring sweep runs.
const DefaultSweepInterval = 30 * time.Second

// DefaultSweepTTL is how long a registry entry may sit with no
// subscriber activity and a dead OS process before it is swept.
const DefaultSweepTTL = 10 * time.Minute

// Reconciler is the C6 periodic consistency check.
type Reconciler struct {
	gateway  *store.Gateway
	backend  platform.Backend
	registry *registry.Registry
	engine   *lifecycle.Engine

	reconcilePeriod time.Duration
	sweepInterval   time.Duration
	sweepTTL        time.Duration
}

// New builds a Reconciler with the spec's default periods. Use the
// With* options to override them in tests.
func New(gateway *store.Gateway, backend platform.Backend, reg *registry.Registry, engine *lifecycle.Engine) *Reconciler {
	return &Reconciler{
		gateway:         gateway,
		backend:         backend,
		registry:        reg,
		engine:          engine,
		reconcilePeriod: DefaultReconcilePeriod,
		sweepInterval:   DefaultSweepInterval,
		sweepTTL:        DefaultSweepTTL,
	}
}

// WithPeriods overrides the default reconcile period, sweep interval and
// sweep TTL, for tests that cannot afford to wait 10 seconds.
func (r *Reconciler) WithPeriods(reconcile, sweep, ttl time.Duration) *Reconciler {
	r.reconcilePeriod = reconcile
	r.sweepInterval = sweep
	r.sweepTTL = ttl
	return r
}

// String implements fmt.Stringer for suture logging.
func (r *Reconciler) String() string { return "reconciler" }

// Serve implements suture.Service: it runs the running/pid healing pass
// and the dead-child ring sweep on their own independent tickers until
// ctx is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	if r.backend.IsElevated() {
		logging.Warn().Msg("reconciler: running as an elevated principal; service-install and working-directory deletion are refused, starting already-configured servers is still permitted")
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r.loop(ctx, r.reconcilePeriod, r.reconcileOnce)
	}()
	go func() {
		defer wg.Done()
		r.loop(ctx, r.sweepInterval, r.sweepOnce)
	}()

	wg.Wait()
	return ctx.Err()
}

func (r *Reconciler) loop(ctx context.Context, period time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// reconcileOnce probes is-alive(pid) for every server the store believes
// is running, healing any that have died out of band, and logs (without
// acting on) the inverse disagreement: a registry entry the store
// believes is stopped.
func (r *Reconciler) reconcileOnce(ctx context.Context) {
	var servers []storeManagedServer
	err := r.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		list, err := s.ListServers(ctx)
		if err != nil {
			return err
		}
		servers = make([]storeManagedServer, len(list))
		for i, srv := range list {
			servers[i] = storeManagedServer{id: srv.ID, running: srv.Running, pid: srv.PID}
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("reconciler: list servers failed")
		return
	}

	runningInStore := make(map[int64]bool, len(servers))
	drifted := 0
	for _, srv := range servers {
		runningInStore[srv.id] = srv.running
		if !srv.running || srv.pid == nil {
			continue
		}
		if r.backend.IsAlive(*srv.pid) {
			continue
		}
		drifted++
		logging.Warn().Int64("server_id", srv.id).Int("pid", *srv.pid).Msg("reconciler: server marked running has no live process, healing")
		r.engine.HealDeadProcess(ctx, srv.id)
	}

	for _, entry := range r.registry.List() {
		if !runningInStore[entry.ServerID] {
			drifted++
			logging.Warn().Int64("server_id", entry.ServerID).Msg("reconciler: process registry disagrees with store (store says stopped, process is alive); operator must resolve")
		}
	}

	metrics.RecordReconcileRun(drifted)
}

type storeManagedServer struct {
	id      int64
	running bool
	pid     *int
}

// sweepOnce frees a registry entry (and its console Fabric) whose OS
// process is no longer alive, has had no subscriber activity for
// sweepTTL, and was not already caught by reconcileOnce — the dead-child
// ring sweep of §4.3, adapted to this supervisor's one-Fabric-per-entry
// ownership model: a Fabric here never outlives the registry entry that
// owns it, so sweeping the entry is sufficient to free its ring.
func (r *Reconciler) sweepOnce(ctx context.Context) {
	for _, entry := range r.registry.List() {
		if entry.Child == nil || r.backend.IsAlive(entry.Child.PID) {
			continue
		}
		if entry.Fabric.SubscriberCount() > 0 {
			continue
		}
		if time.Since(entry.Fabric.LastActivity()) < r.sweepTTL {
			continue
		}
		logging.Info().Int64("server_id", entry.ServerID).Msg("reconciler: sweeping orphaned console ring for dead child")
		r.engine.HealDeadProcess(ctx, entry.ServerID)
	}
}
