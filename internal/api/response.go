// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
)

// APIResponse is the standardized response wrapper for every msmd
// endpoint, mirroring the teacher's internal/api.APIResponse envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta contains optional response metadata.
type APIMeta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs int64           `json:"duration_ms,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta contains pagination info for list responses.
type PaginationMeta struct {
	Total   int64 `json:"total,omitempty"`
	Count   int   `json:"count"`
	HasMore bool  `json:"has_more"`
}

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta(nil)})
}

// SuccessWithPagination writes a 200 response with pagination metadata.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, pagination *PaginationMeta) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta(pagination)})
}

// Created writes a 201 Created response.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, APIResponse{Success: true, Data: data, Meta: rw.meta(nil)})
}

// NoContent writes a 204 No Content response.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response mapped from a raw apierr.Error.
//
// This is where handlers turn an apierr.Kind into an HTTP status:
// Validation->400, Conflict->409, NotFound->404, Resource->500,
// Integrity->422, SecurityRefusal->403. (internal/auth's middleware
// writes its own refusals: 403 for SecurityRefusal, 500 otherwise.) Anything that
// isn't an *apierr.Error at all (a bug, not a modeled failure) becomes a
// 500 and is logged with its full detail server-side only.
func (rw *ResponseWriter) Error(err error) {
	kind, ok := apierr.KindOf(err)
	if !ok {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("api: unmodeled error reached the transport boundary")
		rw.writeError(http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", nil)
		return
	}

	code, _ := apierr.CodeOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().Err(err).Str("code", code).Msg("api: resource error")
	}

	var e *apierr.Error
	var details interface{}
	if asErr, ok := err.(*apierr.Error); ok {
		e = asErr
		if len(e.Details) > 0 {
			details = e.Details
		}
	}
	message := err.Error()
	if e != nil {
		message = e.Message
	}
	rw.writeError(status, code, message, details)
}

func statusForKind(kind apierr.Kind) int {
	switch kind {
	case apierr.KindValidation:
		return http.StatusBadRequest
	case apierr.KindConflict:
		return http.StatusConflict
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindIntegrity:
		return http.StatusUnprocessableEntity
	case apierr.KindSecurityRefusal:
		return http.StatusForbidden
	case apierr.KindResource:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest writes a 400 error for malformed requests (bad JSON,
// failed struct validation) that never made it as far as an
// *apierr.Error.
func (rw *ResponseWriter) BadRequest(code, message string, details interface{}) {
	rw.writeError(http.StatusBadRequest, code, message, details)
}

func (rw *ResponseWriter) writeError(status int, code, message string, details interface{}) {
	requestID := logging.RequestIDFromContext(rw.r.Context())
	rw.writeJSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details, RequestID: requestID},
		Meta: &APIMeta{
			RequestID:  requestID,
			Timestamp:  time.Now(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
		},
	})
}

func (rw *ResponseWriter) meta(pagination *PaginationMeta) *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
		Pagination: pagination,
	}
}

func (rw *ResponseWriter) writeJSON(status int, body interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("api: failed to encode JSON response")
	}
}
