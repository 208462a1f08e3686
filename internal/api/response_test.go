// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/msmd/internal/apierr"
)

func TestStatusForKind(t *testing.T) {
	cases := []struct {
		kind apierr.Kind
		want int
	}{
		{apierr.KindValidation, http.StatusBadRequest},
		{apierr.KindConflict, http.StatusConflict},
		{apierr.KindNotFound, http.StatusNotFound},
		{apierr.KindIntegrity, http.StatusUnprocessableEntity},
		{apierr.KindSecurityRefusal, http.StatusForbidden},
		{apierr.KindResource, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusForKind(c.kind); got != c.want {
			t.Errorf("statusForKind(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestResponseWriterSuccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	NewResponseWriter(w, req).Success(map[string]string{"ok": "yes"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestResponseWriterErrorUnmodeled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	NewResponseWriter(w, req).Error(errPlain("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestResponseWriterErrorModeled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	NewResponseWriter(w, req).Error(apierr.NotFound("ServerNotFound", "server 1 not found"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
