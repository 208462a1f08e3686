// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/msmd/internal/auth"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// ListAPIKeys handles GET /api/v1/keys. The bcrypt hash never leaves the
// store layer: models.ApiKey marshals it with json:"-".
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var keys []models.ApiKey
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		keys, err = s.ListAPIKeys(ctx)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(keys)
}

type issueKeyRequest struct {
	Label string `json:"label" validate:"required"`
}

// IssueAPIKey handles POST /api/v1/keys. The plain-text token is returned
// exactly once, in this response, and is never recoverable afterward.
func (h *Handler) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req issueKeyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var issued auth.IssuedKey
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		issued, err = auth.Issue(ctx, s, req.Label)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(map[string]any{
		"key":   issued.Record,
		"token": issued.Token,
	})
}

// RevokeAPIKey handles DELETE /api/v1/keys/{keyID}.
func (h *Handler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "keyID")
	if !ok {
		return
	}
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		return s.RevokeAPIKey(ctx, id)
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}
