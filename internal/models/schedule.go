// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package models

import "time"

// ScheduleAction is the action a Schedule fires when its cron expression
// matches.
type ScheduleAction string

const (
	ActionBackup  ScheduleAction = "backup"
	ActionRestart ScheduleAction = "restart"
	ActionStop    ScheduleAction = "stop"
	ActionStart   ScheduleAction = "start"
	ActionCommand ScheduleAction = "command"
)

// Schedule is a durable, cron-triggered action against one ManagedServer.
// Invariant: NextRun, once computed, is the first fire-time strictly after
// max(LastRun, now) under CronExpr.
type Schedule struct {
	ID         int64          `json:"id" db:"id"`
	ServerID   int64          `json:"server_id" db:"server_id"`
	Action     ScheduleAction `json:"action" db:"action" validate:"required,oneof=backup restart stop start command"`
	CronExpr   string         `json:"cron" db:"cron_expr" validate:"required"`
	Payload    string         `json:"payload,omitempty" db:"payload"`
	Enabled    bool           `json:"enabled" db:"enabled"`
	LastRun    *time.Time     `json:"last_run,omitempty" db:"last_run"`
	NextRun    *time.Time     `json:"next_run,omitempty" db:"next_run"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
