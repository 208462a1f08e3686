// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// ListServers handles GET /api/v1/servers/.
func (h *Handler) ListServers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var servers []models.ManagedServer
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		servers, err = s.ListServers(ctx)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(servers)
}

// CreateServer handles POST /api/v1/servers/.
func (h *Handler) CreateServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var spec models.CreateServerSpec
	if !decodeAndValidate(w, r, &spec) {
		return
	}

	server, err := h.engine.Create(r.Context(), h.dataRoot, spec)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(server)
}

// ImportServer handles POST /api/v1/servers/import.
func (h *Handler) ImportServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var spec models.ImportServerSpec
	if !decodeAndValidate(w, r, &spec) {
		return
	}

	server, err := h.engine.Import(r.Context(), spec)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(server)
}

// GetServer handles GET /api/v1/servers/{serverID}.
func (h *Handler) GetServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var server models.ManagedServer
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(server)
}

// serverPatch is the set of fields a PATCH /servers/{id} request may
// change. A nil pointer leaves the corresponding field untouched.
type serverPatch struct {
	Version        *string              `json:"version,omitempty"`
	Distribution   *models.Distribution `json:"distribution,omitempty" validate:"omitempty,oneof=paper vanilla fabric purpur forge"`
	Port           *int                 `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	HeapSize       *string              `json:"heap_size,omitempty"`
	RuntimePath    *string              `json:"runtime_path,omitempty"`
	RestartOnCrash *bool                `json:"restart_on_crash,omitempty"`
}

// UpdateServer handles PATCH /api/v1/servers/{serverID}: configuration
// changes only, never the running state (that's Start/Stop/Restart).
func (h *Handler) UpdateServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var patch serverPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	var updated models.ManagedServer
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		server, err := s.FindServerByID(ctx, id)
		if err != nil {
			return err
		}
		if server.Running {
			return apierr.Conflict("ServerRunning", "stop the server before changing its configuration", nil)
		}

		if patch.Version != nil {
			server.Version = *patch.Version
		}
		if patch.Distribution != nil {
			server.Distribution = *patch.Distribution
		}
		if patch.Port != nil {
			server.Port = *patch.Port
		}
		if patch.HeapSize != nil {
			server.HeapSize = *patch.HeapSize
		}
		if patch.RuntimePath != nil {
			server.RuntimePath = *patch.RuntimePath
		}
		if patch.RestartOnCrash != nil {
			server.RestartOnCrash = *patch.RestartOnCrash
		}

		if err := s.UpdateServer(ctx, server); err != nil {
			return err
		}
		updated, err = s.FindServerByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(updated)
}

// DeleteServer handles DELETE /api/v1/servers/{serverID}?keep_files=true.
func (h *Handler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	keepFiles := r.URL.Query().Get("keep_files") == "true"

	if err := h.engine.Delete(r.Context(), h.dataRoot, id, keepFiles); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}

// StartServer handles POST /api/v1/servers/{serverID}/start.
func (h *Handler) StartServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	pid, err := h.engine.Start(r.Context(), id)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(map[string]int{"pid": pid})
}

// StopServer handles POST /api/v1/servers/{serverID}/stop.
func (h *Handler) StopServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var body struct {
		GraceSeconds int `json:"grace_seconds,omitempty"`
	}
	if r.ContentLength > 0 {
		if !decodeAndValidate(w, r, &body) {
			return
		}
	}

	if err := h.engine.Stop(r.Context(), id, body.GraceSeconds); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}

// RestartServer handles POST /api/v1/servers/{serverID}/restart.
func (h *Handler) RestartServer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	if err := h.engine.Restart(r.Context(), id); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}

// ServerStatus handles GET /api/v1/servers/{serverID}/status.
func (h *Handler) ServerStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	snapshot, err := h.engine.Status(r.Context(), id)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(snapshot)
}

// SendCommand handles POST /api/v1/servers/{serverID}/command.
func (h *Handler) SendCommand(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var body struct {
		Command string `json:"command" validate:"required"`
	}
	if !decodeAndValidate(w, r, &body) {
		return
	}

	if err := h.engine.SendCommand(r.Context(), id, body.Command); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}
