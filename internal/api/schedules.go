// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/schedule"
	"github.com/tomtom215/msmd/internal/store"
)

// ListSchedules handles GET /api/v1/servers/{serverID}/schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var schedules []models.Schedule
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		schedules, err = s.ListSchedulesForServer(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(schedules)
}

// createScheduleRequest is the input to CreateSchedule, deliberately
// narrower than models.Schedule: ServerID comes from the path, and the
// computed LastRun/NextRun/CreatedAt fields are never client-settable.
type createScheduleRequest struct {
	Action  models.ScheduleAction `json:"action" validate:"required,oneof=backup restart stop start command"`
	Cron    string                `json:"cron" validate:"required"`
	Payload string                `json:"payload,omitempty"`
	Enabled *bool                 `json:"enabled,omitempty"`
}

// CreateSchedule handles POST /api/v1/servers/{serverID}/schedules.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	serverID, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var req createScheduleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := schedule.ParseCron(req.Cron); err != nil {
		rw.Error(apierr.Validation("InvalidCron", "cron expression could not be parsed", map[string]any{"error": err.Error()}))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	var created models.Schedule
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		nextRun, err := schedule.CalculateNextRun(req.Cron, time.Now(), time.Local)
		if err != nil {
			return apierr.Validation("InvalidCron", "cron expression could not be parsed", nil)
		}

		sch := models.Schedule{
			ServerID: serverID,
			Action:   req.Action,
			CronExpr: req.Cron,
			Payload:  req.Payload,
			Enabled:  enabled,
			NextRun:  &nextRun,
		}
		id, err := s.InsertSchedule(ctx, sch)
		if err != nil {
			return err
		}
		created, err = s.FindScheduleByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(created)
}

type scheduleEnabledPatch struct {
	Enabled bool `json:"enabled"`
}

// SetScheduleEnabled handles PATCH /api/v1/schedules/{scheduleID}.
func (h *Handler) SetScheduleEnabled(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "scheduleID")
	if !ok {
		return
	}

	var patch scheduleEnabledPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	var updated models.Schedule
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		if err := s.SetScheduleEnabled(ctx, id, patch.Enabled); err != nil {
			return err
		}
		var err error
		updated, err = s.FindScheduleByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(updated)
}

// DeleteSchedule handles DELETE /api/v1/schedules/{scheduleID}.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "scheduleID")
	if !ok {
		return
	}
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		return s.DeleteSchedule(ctx, id)
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}
