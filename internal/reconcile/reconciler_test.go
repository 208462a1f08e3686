// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package reconcile

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/msmd/internal/console"
	"github.com/tomtom215/msmd/internal/lifecycle"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
	"github.com/tomtom215/msmd/internal/supervisor"
)

// fakeBackend is a minimal platform.Backend stub: every pid in alive is
// reported as alive, everything else is reported as dead.
type fakeBackend struct {
	mu    sync.Mutex
	alive map[int]bool
}

func newFakeBackend() *fakeBackend { return &fakeBackend{alive: make(map[int]bool)} }

func (f *fakeBackend) Spawn(ctx context.Context, req platform.SpawnRequest) (*platform.Child, error) {
	return nil, nil
}
func (f *fakeBackend) SignalGraceful(pid int) error { return nil }
func (f *fakeBackend) SignalForce(pid int) error    { return nil }
func (f *fakeBackend) IsAlive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[pid]
}
func (f *fakeBackend) ProcessStats(pid int) (float64, uint64, error) { return 0, 0, nil }
func (f *fakeBackend) DiscoverRuntimes(ctx context.Context) ([]platform.Runtime, error) {
	return nil, nil
}
func (f *fakeBackend) FreePort(port int) (platform.PortCheck, error) {
	return platform.PortCheck{Free: true}, nil
}
func (f *fakeBackend) DataRoot() (string, error) { return "", nil }
func (f *fakeBackend) IsElevated() bool          { return false }

func newTestEngine(t *testing.T, gateway *store.Gateway, backend platform.Backend, reg *registry.Registry) *lifecycle.Engine {
	t.Helper()
	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.DefaultTreeConfig())
	if err != nil {
		t.Fatalf("new supervisor tree: %v", err)
	}
	return lifecycle.New(gateway, backend, reg, tree, nil, 0)
}

func mustInsertServer(t *testing.T, gateway *store.Gateway, name string, running bool, pid *int) int64 {
	t.Helper()
	var id int64
	err := gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var err error
		id, err = s.InsertServer(ctx, models.ManagedServer{
			Name:         name,
			Distribution: models.DistributionVanilla,
			Version:      "1.20.4",
			WorkingDir:   "/data/servers/" + name,
			Port:         25565,
			HeapSize:     "1G",
		})
		if err != nil {
			return err
		}
		if running {
			return s.UpdateServerRuntimeState(ctx, id, true, pid, timeNowPtr(), nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert server %s: %v", name, err)
	}
	return id
}

func timeNowPtr() *time.Time {
	now := time.Now()
	return &now
}

// TestReconcileOnce_HealsServerMarkedRunningWithDeadPID exercises the
// running/pid healing pass: a server the store believes is running, with
// a pid the backend reports as dead, must be healed back to stopped.
func TestReconcileOnce_HealsServerMarkedRunningWithDeadPID(t *testing.T) {
	gateway, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	defer gateway.Close()

	backend := newFakeBackend()
	reg := registry.New()
	engine := newTestEngine(t, gateway, backend, reg)

	deadPID := 99999
	id := mustInsertServer(t, gateway, "dead-pid", true, &deadPID)

	r := New(gateway, backend, reg, engine)
	r.reconcileOnce(context.Background())

	var server models.ManagedServer
	err = gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, id)
		return err
	})
	if err != nil {
		t.Fatalf("find server: %v", err)
	}
	if server.Running {
		t.Fatalf("expected server to be healed to stopped, still running")
	}
}

// TestReconcileOnce_LeavesLiveServerAlone confirms a running server whose
// pid the backend reports as alive is left untouched.
func TestReconcileOnce_LeavesLiveServerAlone(t *testing.T) {
	gateway, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	defer gateway.Close()

	backend := newFakeBackend()
	reg := registry.New()
	engine := newTestEngine(t, gateway, backend, reg)

	livePID := 424242
	backend.alive[livePID] = true
	id := mustInsertServer(t, gateway, "alive", true, &livePID)

	r := New(gateway, backend, reg, engine)
	r.reconcileOnce(context.Background())

	var server models.ManagedServer
	err = gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, id)
		return err
	})
	if err != nil {
		t.Fatalf("find server: %v", err)
	}
	if !server.Running {
		t.Fatalf("expected live server to remain marked running")
	}
}

// TestSweepOnce_SweepsOrphanedColdEntry exercises the dead-child ring
// sweep: a registry entry whose process is dead, has no subscribers, and
// has been idle past the TTL must be swept (removed from the registry).
func TestSweepOnce_SweepsOrphanedColdEntry(t *testing.T) {
	gateway, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	defer gateway.Close()

	backend := newFakeBackend()
	reg := registry.New()
	engine := newTestEngine(t, gateway, backend, reg)

	id := mustInsertServer(t, gateway, "orphan", true, nil)
	fabric := console.NewFabric(id, 0)
	if _, err := reg.Add(id, &platform.Child{PID: 54321}, fabric); err != nil {
		t.Fatalf("registry add: %v", err)
	}

	r := New(gateway, backend, reg, engine).WithPeriods(time.Second, time.Second, 0)
	r.sweepOnce(context.Background())

	if reg.IsRunning(id) {
		t.Fatalf("expected orphaned entry to be swept from the registry")
	}
}

// TestSweepOnce_KeepsEntryWithLiveSubscriber confirms an entry with an
// active subscriber survives the sweep even once its TTL has elapsed.
func TestSweepOnce_KeepsEntryWithLiveSubscriber(t *testing.T) {
	gateway, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	defer gateway.Close()

	backend := newFakeBackend()
	reg := registry.New()
	engine := newTestEngine(t, gateway, backend, reg)

	id := mustInsertServer(t, gateway, "subscribed", true, nil)
	fabric := console.NewFabric(id, 0)
	fabric.Subscribe(noopSink{})
	if _, err := reg.Add(id, &platform.Child{PID: 54322}, fabric); err != nil {
		t.Fatalf("registry add: %v", err)
	}

	r := New(gateway, backend, reg, engine).WithPeriods(time.Second, time.Second, 0)
	r.sweepOnce(context.Background())

	if !reg.IsRunning(id) {
		t.Fatalf("expected subscribed entry to survive the sweep")
	}
}

type noopSink struct{}

func (noopSink) ID() uint64                      { return console.NextSinkID() }
func (noopSink) Enqueue(frame console.Frame) bool { return true }
func (noopSink) Close(reason string)             {}
