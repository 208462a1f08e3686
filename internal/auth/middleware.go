// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package auth

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/store"
)

// HeaderName is the header the spec's HTTP surface reads the API key
// from: "X-API-Key: <prefix>.<secret>".
const HeaderName = "X-API-Key"

var authSecurityLog = logging.NewSecurityLogger()

type contextKey int

const subjectKey contextKey = 0

// RequireKeyIfConfigured builds middleware enforcing the spec's rule:
// when no api_keys row exists at all, every route is open (the common
// single-operator, localhost-only deployment); the moment at least one
// key has ever been issued, every mutating route (anything but GET/HEAD)
// requires a valid, active key.
func RequireKeyIfConfigured(gateway *store.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			var anyConfigured bool
			var verified *string
			verifyErr := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
				keys, err := s.ListAPIKeys(ctx)
				if err != nil {
					return err
				}
				anyConfigured = len(keys) > 0
				if !anyConfigured {
					return nil
				}

				token := r.Header.Get(HeaderName)
				if token == "" {
					return apierr.SecurityRefusal("MissingApiKey", "this instance requires an api key for mutating requests")
				}
				record, err := Verify(ctx, s, token)
				if err != nil {
					return err
				}
				label := record.Label
				verified = &label
				return nil
			})

			if verifyErr != nil {
				if kind, ok := apierr.KindOf(verifyErr); ok && kind == apierr.KindSecurityRefusal {
					authSecurityLog.LogAPIKeyRejected(verifyErr.Error(), r.RemoteAddr)
				}
				writeRefusal(w, verifyErr)
				return
			}
			if anyConfigured && verified != nil {
				r = r.WithContext(context.WithValue(r.Context(), subjectKey, *verified))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SubjectFromContext returns the label of the api key that authenticated
// this request, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

func writeRefusal(w http.ResponseWriter, err error) {
	kind, _ := apierr.KindOf(err)
	status := http.StatusForbidden
	if kind != apierr.KindSecurityRefusal {
		status = http.StatusInternalServerError
		logging.Error().Err(err).Msg("auth: middleware failed to evaluate api key")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	_, _ = w.Write(body)
}
