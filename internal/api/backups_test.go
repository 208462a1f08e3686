// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/msmd/internal/backup"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/registry"
)

func newTestHandlerWithBackups(t *testing.T) *Handler {
	t.Helper()
	h, gw := newTestHandler(t)
	reg := registry.New()
	h.backups = backup.New(gw, reg, t.TempDir())
	return h
}

func TestListBackupsEmpty(t *testing.T) {
	h := newTestHandlerWithBackups(t)
	insertTestServer(t, h.gateway, models.ManagedServer{
		Name: "bastion", Distribution: models.DistributionPaper, Version: "1.21",
		WorkingDir: t.TempDir(), Port: 25568, HeapSize: "1G",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/servers/1/backups", nil)
	req = withChiParam(req, "serverID", "1")
	w := httptest.NewRecorder()

	h.ListBackups(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"data":[]`)) {
		t.Fatalf("body = %s, want empty data array", w.Body.String())
	}
}

func TestDeleteBackupNotFound(t *testing.T) {
	h := newTestHandlerWithBackups(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/backups/1", nil)
	req = withChiParam(req, "backupID", "1")
	w := httptest.NewRecorder()

	h.DeleteBackup(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body=%s", w.Code, w.Body.String())
	}
}
