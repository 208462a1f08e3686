// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"

	"github.com/tomtom215/msmd/internal/models"
)

// ListBackups handles GET /api/v1/servers/{serverID}/backups.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	backups, err := h.backups.ListBackups(r.Context(), id)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(backups)
}

// CreateBackup handles POST /api/v1/servers/{serverID}/backups.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}
	if err := h.backups.CreateBackup(r.Context(), id, models.BackupKindManual); err != nil {
		rw.Error(err)
		return
	}
	rw.Created(nil)
}

// RestoreBackup handles POST /api/v1/backups/{backupID}/restore.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "backupID")
	if !ok {
		return
	}
	if err := h.backups.RestoreBackup(r.Context(), id); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}

// DeleteBackup handles DELETE /api/v1/backups/{backupID}.
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "backupID")
	if !ok {
		return
	}
	if err := h.backups.DeleteBackup(r.Context(), id); err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}
