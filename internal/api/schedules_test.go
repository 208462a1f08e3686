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

	"github.com/tomtom215/msmd/internal/models"
)

func TestCreateScheduleRejectsBadCron(t *testing.T) {
	h, gw := newTestHandler(t)
	insertTestServer(t, gw, models.ManagedServer{
		Name: "lobby", Distribution: models.DistributionPaper, Version: "1.21",
		WorkingDir: "/data/lobby", Port: 25567, HeapSize: "1G",
	})

	body := bytes.NewBufferString(`{"action":"backup","cron":"not a cron"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/servers/1/schedules", body)
	req = withChiParam(req, "serverID", "1")
	w := httptest.NewRecorder()

	h.CreateSchedule(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateAndListSchedule(t *testing.T) {
	h, gw := newTestHandler(t)
	insertTestServer(t, gw, models.ManagedServer{
		Name: "lobby", Distribution: models.DistributionPaper, Version: "1.21",
		WorkingDir: "/data/lobby", Port: 25567, HeapSize: "1G",
	})

	body := bytes.NewBufferString(`{"action":"backup","cron":"0 3 * * *"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/servers/1/schedules", body)
	req = withChiParam(req, "serverID", "1")
	w := httptest.NewRecorder()

	h.CreateSchedule(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", w.Code, w.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/servers/1/schedules", nil)
	listReq = withChiParam(listReq, "serverID", "1")
	listW := httptest.NewRecorder()

	h.ListSchedules(listW, listReq)

	if listW.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", listW.Code)
	}
	if !bytes.Contains(listW.Body.Bytes(), []byte(`"backup"`)) {
		t.Fatalf("body missing schedule action: %s", listW.Body.String())
	}
}

func TestSetScheduleEnabled(t *testing.T) {
	h, gw := newTestHandler(t)
	insertTestServer(t, gw, models.ManagedServer{
		Name: "lobby", Distribution: models.DistributionPaper, Version: "1.21",
		WorkingDir: "/data/lobby", Port: 25567, HeapSize: "1G",
	})
	createBody := bytes.NewBufferString(`{"action":"restart","cron":"*/15 * * * *"}`)
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/servers/1/schedules", createBody)
	createReq = withChiParam(createReq, "serverID", "1")
	createW := httptest.NewRecorder()
	h.CreateSchedule(createW, createReq)
	if createW.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%s", createW.Code, createW.Body.String())
	}

	patchBody := bytes.NewBufferString(`{"enabled":false}`)
	patchReq := httptest.NewRequest(http.MethodPatch, "/api/v1/schedules/1", patchBody)
	patchReq = withChiParam(patchReq, "scheduleID", "1")
	patchW := httptest.NewRecorder()

	h.SetScheduleEnabled(patchW, patchReq)

	if patchW.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", patchW.Code, patchW.Body.String())
	}
	if !bytes.Contains(patchW.Body.Bytes(), []byte(`"enabled":false`)) {
		t.Fatalf("body = %s, want enabled:false", patchW.Body.String())
	}
}

