// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// fakeEngine records every action submitted to it, blocking on restart
// until the test releases it, so the single-flight dedup path can be
// exercised deterministically.
type fakeEngine struct {
	mu           sync.Mutex
	starts       []int64
	stops        []int64
	restarts     []int64
	commands     []string
	restartGate  chan struct{}
	restartCalls int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{restartGate: make(chan struct{})}
}

func (f *fakeEngine) Start(ctx context.Context, serverID int64) error {
	f.mu.Lock()
	f.starts = append(f.starts, serverID)
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Stop(ctx context.Context, serverID int64, graceSeconds int) error {
	f.mu.Lock()
	f.stops = append(f.stops, serverID)
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Restart(ctx context.Context, serverID int64) error {
	f.mu.Lock()
	f.restartCalls++
	f.restarts = append(f.restarts, serverID)
	f.mu.Unlock()
	<-f.restartGate
	return nil
}

func (f *fakeEngine) SendCommand(ctx context.Context, serverID int64, command string) error {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()
	return nil
}

type fakeBackupCreator struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeBackupCreator) CreateBackup(ctx context.Context, serverID int64, kind models.BackupKind) error {
	f.mu.Lock()
	f.calls = append(f.calls, serverID)
	f.mu.Unlock()
	return nil
}

func openTestGateway(t *testing.T) *store.Gateway {
	t.Helper()
	g, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func insertDueSchedule(t *testing.T, gateway *store.Gateway, serverID int64, action models.ScheduleAction, payload string) int64 {
	t.Helper()
	past := time.Now().Add(-time.Minute)
	var id int64
	err := gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var err error
		id, err = s.InsertSchedule(ctx, models.Schedule{
			ServerID: serverID,
			Action:   action,
			CronExpr: "* * * * *",
			Payload:  payload,
			Enabled:  true,
			NextRun:  &past,
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert schedule: %v", err)
	}
	return id
}

// TestFireDue_DispatchesRestartAndComputesNextRun exercises the core
// fire path: a due restart schedule is re-read, its next-run recomputed
// and persisted, and the action submitted to the Engine.
func TestFireDue_DispatchesRestartAndComputesNextRun(t *testing.T) {
	gateway := openTestGateway(t)
	engine := newFakeEngine()
	close(engine.restartGate) // let Restart return immediately
	backups := &fakeBackupCreator{}

	id := insertDueSchedule(t, gateway, 7, models.ActionRestart, "")

	d := NewDispatcher(gateway, engine, backups)
	d.fireDue(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		engine.mu.Lock()
		n := len(engine.restarts)
		engine.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected exactly one restart dispatched, got %d", n)
		}
		time.Sleep(time.Millisecond)
	}

	var sch models.Schedule
	err := gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var err error
		sch, err = s.FindScheduleByID(ctx, id)
		return err
	})
	if err != nil {
		t.Fatalf("find schedule: %v", err)
	}
	if sch.LastRun == nil {
		t.Fatalf("expected LastRun to be persisted")
	}
	if sch.NextRun == nil || !sch.NextRun.After(time.Now()) {
		t.Fatalf("expected NextRun to be recomputed into the future, got %v", sch.NextRun)
	}
}

// TestFireDue_SkipsDisabledScheduleFoundOnReRead covers the spec's
// re-read-under-scope rule: a schedule disabled between ListEnabledSchedules
// and the re-read must not fire.
func TestFireDue_SkipsDisabledScheduleFoundOnReRead(t *testing.T) {
	gateway := openTestGateway(t)
	engine := newFakeEngine()
	close(engine.restartGate)
	backups := &fakeBackupCreator{}

	id := insertDueSchedule(t, gateway, 9, models.ActionStart, "")
	if err := gateway.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		return s.SetScheduleEnabled(ctx, id, false)
	}); err != nil {
		t.Fatalf("disable schedule: %v", err)
	}

	d := NewDispatcher(gateway, engine, backups)
	d.fireDue(context.Background())
	time.Sleep(20 * time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.starts) != 0 {
		t.Fatalf("expected disabled schedule not to fire, got %d starts", len(engine.starts))
	}
}

// TestDispatch_SingleFlightDropsConcurrentFireForSameServerAction ensures
// a second fire for the same (server, action) pair while one is still in
// flight is dropped rather than queued.
func TestDispatch_SingleFlightDropsConcurrentFireForSameServerAction(t *testing.T) {
	gateway := openTestGateway(t)
	engine := newFakeEngine()
	backups := &fakeBackupCreator{}
	d := NewDispatcher(gateway, engine, backups)

	sch := models.Schedule{ID: 1, ServerID: 42, Action: models.ActionRestart}
	d.dispatch(context.Background(), sch)
	d.dispatch(context.Background(), sch)

	deadline := time.Now().Add(2 * time.Second)
	for {
		engine.mu.Lock()
		n := engine.restartCalls
		engine.mu.Unlock()
		if n >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected the first dispatch to reach the engine")
		}
		time.Sleep(time.Millisecond)
	}

	close(engine.restartGate)
	time.Sleep(20 * time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.restartCalls != 1 {
		t.Fatalf("expected exactly one restart call due to single-flight dedup, got %d", engine.restartCalls)
	}
}

// TestDispatch_BackupActionUsesBackupCreator confirms backup schedules go
// through the BackupCreator, not the Engine.
func TestDispatch_BackupActionUsesBackupCreator(t *testing.T) {
	gateway := openTestGateway(t)
	engine := newFakeEngine()
	close(engine.restartGate)
	backups := &fakeBackupCreator{}
	d := NewDispatcher(gateway, engine, backups)

	d.dispatch(context.Background(), models.Schedule{ID: 2, ServerID: 11, Action: models.ActionBackup})

	deadline := time.Now().Add(2 * time.Second)
	for {
		backups.mu.Lock()
		n := len(backups.calls)
		backups.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected exactly one backup call")
		}
		time.Sleep(time.Millisecond)
	}
}

// TestSleepDuration_NoEnabledSchedulesUsesFallbackPoll confirms the
// dispatcher falls back to polling every fallbackPoll when nothing is
// enabled, rather than sleeping forever.
func TestSleepDuration_NoEnabledSchedulesUsesFallbackPoll(t *testing.T) {
	gateway := openTestGateway(t)
	engine := newFakeEngine()
	close(engine.restartGate)
	backups := &fakeBackupCreator{}
	d := NewDispatcher(gateway, engine, backups)

	d.dispatch(context.Background(), models.Schedule{}) // no-op sanity, unknown action logged

	sleep, err := d.sleepDuration(context.Background())
	if err != nil {
		t.Fatalf("sleepDuration: %v", err)
	}
	if sleep != fallbackPoll {
		t.Fatalf("expected fallbackPoll with no enabled schedules, got %v", sleep)
	}
}
