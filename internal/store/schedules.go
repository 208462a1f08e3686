// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/msmd/internal/models"
)

const scheduleColumns = `id, server_id, action, cron_expr, payload, enabled, last_run, next_run, created_at`

func scanSchedule(row interface{ Scan(...any) error }) (models.Schedule, error) {
	var sch models.Schedule
	var payload sql.NullString
	var lastRun, nextRun sql.NullTime

	err := row.Scan(&sch.ID, &sch.ServerID, &sch.Action, &sch.CronExpr, &payload, &sch.Enabled, &lastRun, &nextRun, &sch.CreatedAt)
	if err != nil {
		return models.Schedule{}, err
	}
	if payload.Valid {
		sch.Payload = payload.String
	}
	if lastRun.Valid {
		t := lastRun.Time
		sch.LastRun = &t
	}
	if nextRun.Valid {
		t := nextRun.Time
		sch.NextRun = &t
	}
	return sch, nil
}

// FindScheduleByID returns a snapshot of one schedule.
func (s *Scope) FindScheduleByID(ctx context.Context, id int64) (models.Schedule, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sch, err := scanSchedule(row)
	if err != nil {
		return models.Schedule{}, notFound("ScheduleNotFound", fmt.Sprintf("schedule %d not found", id), err)
	}
	return sch, nil
}

// ListEnabledSchedules returns every schedule with enabled = true. The
// scheduler dispatcher calls it on every pass of its loop.
func (s *Scope) ListEnabledSchedules(ctx context.Context) ([]models.Schedule, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE enabled = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list enabled schedules: %w", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan schedule: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

// ListSchedulesForServer returns every schedule attached to serverID.
func (s *Scope) ListSchedulesForServer(ctx context.Context, serverID int64) ([]models.Schedule, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE server_id = ? ORDER BY id`, serverID)
	if err != nil {
		return nil, fmt.Errorf("store: list server schedules: %w", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan schedule: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

// InsertSchedule creates a new schedule record.
func (s *Scope) InsertSchedule(ctx context.Context, sch models.Schedule) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO schedules (server_id, action, cron_expr, payload, enabled, next_run)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, sch.ServerID, sch.Action, sch.CronExpr, nullableString(sch.Payload), sch.Enabled, nullableTime(sch.NextRun)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert schedule: %w", err)
	}
	return id, nil
}

// RecordScheduleFire persists the result of one dispatch tick: the fire's
// LastRun timestamp and the newly-computed NextRun, both set within the
// same scope the dispatcher re-reads the schedule under — satisfying
// testable property #9 (next-run strictly greater than the fire's
// last-run).
func (s *Scope) RecordScheduleFire(ctx context.Context, id int64, lastRun, nextRun time.Time) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE schedules SET last_run = ?, next_run = ? WHERE id = ?`, lastRun, nextRun, id)
	if err != nil {
		return fmt.Errorf("store: record schedule fire: %w", err)
	}
	return nil
}

// SetScheduleEnabled toggles a schedule without touching its run history.
func (s *Scope) SetScheduleEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE schedules SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("store: set schedule enabled: %w", err)
	}
	return nil
}

// DeleteSchedule removes a schedule record.
func (s *Scope) DeleteSchedule(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete schedule: %w", err)
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
