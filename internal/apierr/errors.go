// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package apierr defines the error taxonomy shared by the core engine
// (lifecycle, reconciler, scheduler) and the HTTP transport. Every
// component below the transport layer returns errors built from this
// package instead of raw OS or database errors, so that the core engine
// packages never import net/http; only the HTTP-facing packages
// (internal/api, internal/auth's middleware, and the fetch clients) do.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy described in the spec's error handling design:
// Validation, Conflict, NotFound, Resource, Integrity, and SecurityRefusal.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindResource        Kind = "resource"
	KindIntegrity       Kind = "integrity"
	KindSecurityRefusal Kind = "security_refusal"
)

// Error is the concrete error type carried across component boundaries.
type Error struct {
	Kind    Kind
	Code    string // stable machine-readable string, e.g. "AlreadyRunning"
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is lets errors.Is match on Kind+Code against another *Error.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

func newErr(kind Kind, code, msg string, wrapped error, details map[string]any) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Wrapped: wrapped, Details: details}
}

// Validation builds a KindValidation error, e.g. bad server name, invalid
// cron expression, invalid port, missing required field. Never retried.
func Validation(code, msg string, details map[string]any) *Error {
	return newErr(KindValidation, code, msg, nil, details)
}

// Conflict builds a KindConflict error, e.g. AlreadyRunning, AlreadyStopped,
// PortInUse, NameInUse.
func Conflict(code, msg string, details map[string]any) *Error {
	return newErr(KindConflict, code, msg, nil, details)
}

// NotFound builds a KindNotFound error, e.g. unknown server, unknown backup.
func NotFound(code, msg string) *Error {
	return newErr(KindNotFound, code, msg, nil, nil)
}

// Resource builds a KindResource error, e.g. disk full, download failed
// after retries. Never swallowed at this layer; logged by the caller.
func Resource(code, msg string, wrapped error) *Error {
	return newErr(KindResource, code, msg, wrapped, nil)
}

// Integrity builds a KindIntegrity error, e.g. digest mismatch, truncated
// download. Fatal for the operation; any partial artifact must already
// have been removed by the caller before this is returned.
func Integrity(code, msg string, wrapped error) *Error {
	return newErr(KindIntegrity, code, msg, wrapped, nil)
}

// SecurityRefusal builds a KindSecurityRefusal error, e.g. path-traversal
// delete attempt, elevated-principal privileged action, unauthenticated
// mutation against a keyed instance.
func SecurityRefusal(code, msg string) *Error {
	return newErr(KindSecurityRefusal, code, msg, nil, nil)
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// CodeOf extracts the stable Code of err if it is (or wraps) an *Error.
func CodeOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Common conflict sentinels the lifecycle engine and scheduler compare
// against with errors.Is.
var (
	ErrAlreadyRunning = Conflict("AlreadyRunning", "server is already running", nil)
	ErrAlreadyStopped = Conflict("AlreadyStopped", "server is already stopped", nil)
	ErrNameInUse      = Conflict("NameInUse", "server name already in use", nil)
)

// PortInUse builds the {holder-pid} conflict described in §4.4.
func PortInUse(holderPID int) *Error {
	return Conflict("PortInUse", "tcp port is already in use", map[string]any{"holder_pid": holderPID})
}

// ErrEulaMissing is the fatal validation error for a missing or unaccepted
// EULA file — the spec requires this never be silently healed by creating
// the file on the operator's behalf.
var ErrEulaMissing = Validation("EulaMissing", "eula.txt is missing or not accepted", nil)
