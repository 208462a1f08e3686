// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// fallbackPoll bounds how long the dispatcher can sleep when no schedule
// is enabled, or between re-evaluations after a wake, so a schedule
// inserted by the HTTP layer is never missed by more than this interval
// even without an explicit Notify call.
const fallbackPoll = time.Minute

// Engine is the subset of the Lifecycle Engine the dispatcher submits
// restart/stop/start/command actions to. internal/lifecycle.Engine
// satisfies this.
type Engine interface {
	Start(ctx context.Context, serverID int64) error
	Stop(ctx context.Context, serverID int64, graceSeconds int) error
	Restart(ctx context.Context, serverID int64) error
	SendCommand(ctx context.Context, serverID int64, command string) error
}

// BackupCreator is the subset of internal/backup.Manager the dispatcher
// submits scheduled-backup actions to.
type BackupCreator interface {
	CreateBackup(ctx context.Context, serverID int64, kind models.BackupKind) error
}

// Dispatcher is the Scheduler (C7): it loads enabled schedules at
// startup, sleeps until the earliest next-run, and on each fire re-reads
// the schedule under a store scope, computes and persists the following
// next-run, then submits the action outside the scope so the scope is
// never held across a potentially long-running action.
type Dispatcher struct {
	store   *store.Gateway
	engine  Engine
	backups BackupCreator

	notify chan struct{}

	inFlight sync.Map // key: "serverID/action" -> struct{}{}

	stop chan struct{}
	done chan struct{}
}

// NewDispatcher constructs a Dispatcher. engine and backups may not be
// nil; the Scheduler has no action it can perform without them.
func NewDispatcher(gateway *store.Gateway, engine Engine, backups BackupCreator) *Dispatcher {
	return &Dispatcher{
		store:   gateway,
		engine:  engine,
		backups: backups,
		notify:  make(chan struct{}, 1),
	}
}

// Notify wakes the dispatch loop immediately, e.g. right after a new
// schedule is inserted or an existing one is re-enabled, so it does not
// have to wait out fallbackPoll to notice.
func (d *Dispatcher) Notify() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service: it runs the dispatch loop until ctx is
// canceled.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	defer close(d.done)

	for {
		sleep, err := d.sleepDuration(ctx)
		if err != nil {
			logging.Error().Err(err).Msg("schedule: failed to compute next sleep interval")
			sleep = fallbackPoll
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-d.stop:
			timer.Stop()
			return nil
		case <-d.notify:
			timer.Stop()
			continue
		case <-timer.C:
		}

		d.fireDue(ctx)
	}
}

func (d *Dispatcher) String() string { return "scheduler-dispatcher" }

// Stop requests the loop to exit and waits for it to do so. It returns
// nil at once if Serve has not been called.
func (d *Dispatcher) Stop() error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	return nil
}

// sleepDuration computes how long to sleep until the earliest next-run
// among enabled schedules, capped by fallbackPoll.
func (d *Dispatcher) sleepDuration(ctx context.Context) (time.Duration, error) {
	var earliest *time.Time
	err := d.store.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		schedules, err := s.ListEnabledSchedules(ctx)
		if err != nil {
			return err
		}
		for i := range schedules {
			sch := schedules[i]
			if sch.NextRun == nil {
				continue
			}
			if earliest == nil || sch.NextRun.Before(*earliest) {
				earliest = sch.NextRun
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if earliest == nil {
		return fallbackPoll, nil
	}
	d := time.Until(*earliest)
	if d < 0 {
		d = 0
	}
	if d > fallbackPoll {
		d = fallbackPoll
	}
	return d, nil
}

// fireDue re-reads every enabled schedule whose next-run has arrived,
// persists the fire (last-run + freshly computed next-run) within one
// scope, then submits the action outside the scope. A schedule already
// in flight for its (server, action) pair is skipped and logged — the
// spec's fire-once-per-tick, no-catch-up, single-flight rule.
func (d *Dispatcher) fireDue(ctx context.Context) {
	var due []models.Schedule
	now := time.Now()

	err := d.store.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		schedules, err := s.ListEnabledSchedules(ctx)
		if err != nil {
			return err
		}
		for i := range schedules {
			sch := schedules[i]
			if sch.NextRun == nil || sch.NextRun.After(now) {
				continue
			}

			// Re-read under the same scope: the schedule may have been
			// disabled since ListEnabledSchedules ran.
			fresh, err := s.FindScheduleByID(ctx, sch.ID)
			if err != nil {
				logging.Error().Err(err).Int64("schedule_id", sch.ID).Msg("schedule: re-read failed, skipping fire")
				continue
			}
			if !fresh.Enabled {
				continue
			}

			cron, err := ParseCron(fresh.CronExpr)
			if err != nil {
				logging.Error().Err(err).Int64("schedule_id", fresh.ID).Msg("schedule: invalid cron expression, skipping")
				continue
			}
			nextRun := cron.NextRun(now, time.UTC)
			if err := s.RecordScheduleFire(ctx, fresh.ID, now, nextRun); err != nil {
				logging.Error().Err(err).Int64("schedule_id", fresh.ID).Msg("schedule: failed to record fire")
				continue
			}
			fresh.LastRun = &now
			fresh.NextRun = &nextRun
			due = append(due, fresh)
		}
		return nil
	})
	if err != nil {
		logging.Error().Err(err).Msg("schedule: failed to evaluate due schedules")
		return
	}

	for _, sch := range due {
		d.dispatch(ctx, sch)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, sch models.Schedule) {
	key := fmt.Sprintf("%d/%s", sch.ServerID, sch.Action)
	if _, loaded := d.inFlight.LoadOrStore(key, struct{}{}); loaded {
		logging.Warn().Int64("server_id", sch.ServerID).Str("action", string(sch.Action)).
			Msg("schedule: previous fire for this server/action still in flight, dropping this tick")
		return
	}

	go func() {
		defer d.inFlight.Delete(key)

		var err error
		switch sch.Action {
		case models.ActionBackup:
			err = d.backups.CreateBackup(ctx, sch.ServerID, models.BackupKindScheduled)
		case models.ActionRestart:
			err = d.engine.Restart(ctx, sch.ServerID)
		case models.ActionStop:
			err = d.engine.Stop(ctx, sch.ServerID, 30)
		case models.ActionStart:
			err = d.engine.Start(ctx, sch.ServerID)
		case models.ActionCommand:
			err = d.engine.SendCommand(ctx, sch.ServerID, sch.Payload)
		default:
			err = fmt.Errorf("schedule: unknown action %q", sch.Action)
		}

		metrics.RecordScheduleFire(string(sch.Action), err)

		if err != nil {
			if kind, ok := apierr.KindOf(err); ok && kind == apierr.KindConflict {
				// AlreadyRunning/AlreadyStopped firing from a schedule is
				// an unsurprising race with operator action, not a fault.
				logging.Info().Int64("server_id", sch.ServerID).Str("action", string(sch.Action)).
					Err(err).Msg("schedule: action was a no-op")
				return
			}
			logging.Error().Int64("server_id", sch.ServerID).Str("action", string(sch.Action)).
				Err(err).Msg("schedule: action failed")
		}
	}()
}
