// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/msmd/internal/validation"
)

// decodeAndValidate reads r's JSON body into dst and runs struct
// validation tags over it, writing a 400 response and returning false on
// either failure — mirroring the teacher's parseAndValidateRequest
// helper in handlers_server_management.go.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		rw.BadRequest("INVALID_JSON", "request body is not valid JSON", map[string]string{"error": err.Error()})
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.BadRequest(apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// idParam extracts and parses the int64 path parameter named key,
// writing a 400 response and returning ok=false on failure.
func idParam(w http.ResponseWriter, r *http.Request, key string) (id int64, ok bool) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		NewResponseWriter(w, r).BadRequest("INVALID_ID", key+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
