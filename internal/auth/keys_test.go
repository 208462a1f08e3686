// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/store"
)

func openTestGateway(t *testing.T) *store.Gateway {
	t.Helper()
	g, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	var issued IssuedKey
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		issued, err = Issue(ctx, s, "ci-runner")
		return err
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	err = gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		_, err := Verify(ctx, s, issued.Token)
		return err
	})
	if err != nil {
		t.Fatalf("verify valid token: %v", err)
	}
}

func TestVerify_WrongSecretRejected(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	var issued IssuedKey
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		issued, err = Issue(ctx, s, "ci-runner")
		return err
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	err = gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		_, err := Verify(ctx, s, issued.Record.Prefix+".wrongsecret")
		return err
	})
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindSecurityRefusal {
		t.Fatalf("expected security refusal for wrong secret, got %v", err)
	}
}

func TestVerify_RevokedKeyRejected(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	var issued IssuedKey
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		issued, err = Issue(ctx, s, "ci-runner")
		if err != nil {
			return err
		}
		return s.RevokeAPIKey(ctx, issued.Record.ID)
	})
	if err != nil {
		t.Fatalf("issue+revoke: %v", err)
	}

	err = gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		_, err := Verify(ctx, s, issued.Token)
		return err
	})
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindSecurityRefusal {
		t.Fatalf("expected security refusal for revoked key, got %v", err)
	}
}

// TestRequireKeyIfConfigured_OpenWhenNoKeysExist confirms a fresh
// instance with no issued keys allows mutating requests through.
func TestRequireKeyIfConfigured_OpenWhenNoKeysExist(t *testing.T) {
	gateway := openTestGateway(t)
	mw := RequireKeyIfConfigured(gateway)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/servers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected request to pass through when no keys are configured, called=%v code=%d", called, rec.Code)
	}
}

// TestRequireKeyIfConfigured_RejectsMissingKeyOnceConfigured confirms that
// once any key exists, a mutating request with no header is refused.
func TestRequireKeyIfConfigured_RejectsMissingKeyOnceConfigured(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		_, err := Issue(ctx, s, "ci-runner")
		return err
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mw := RequireKeyIfConfigured(gateway)
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/servers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Fatalf("expected request without a key to be rejected before reaching the handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

// TestRequireKeyIfConfigured_GetIsAlwaysOpen confirms read-only routes
// never require a key even once one is configured.
func TestRequireKeyIfConfigured_GetIsAlwaysOpen(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		_, err := Issue(ctx, s, "ci-runner")
		return err
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mw := RequireKeyIfConfigured(gateway)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/servers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected GET to bypass the key check, got %d", rec.Code)
	}
}

// TestRequireKeyIfConfigured_AcceptsValidKey confirms a correctly
// presented key lets a mutating request through and stamps the subject.
func TestRequireKeyIfConfigured_AcceptsValidKey(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	var issued IssuedKey
	err := gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		issued, err = Issue(ctx, s, "ci-runner")
		return err
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mw := RequireKeyIfConfigured(gateway)
	var subject string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/servers", nil)
	req.Header.Set(HeaderName, issued.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected valid key to pass, got %d", rec.Code)
	}
	if subject != "ci-runner" {
		t.Fatalf("expected subject label to be stamped on the context, got %q", subject)
	}
}
