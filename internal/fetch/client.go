// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
)

// HTTPClient is the shared downloader every concrete fetcher (Modrinth,
// Hangar, plain URL) embeds. It wraps net/http in a circuit breaker per
// upstream host so a downed registry fails fast across the whole retry
// budget instead of burning all 5 attempts against a host that is
// already known to be down, plus a per-host rate.Limiter so a burst of
// plugin installs doesn't hammer one upstream.
type HTTPClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[Result]
	limiter *rate.Limiter
	backoff backoffPolicy
}

// NewHTTPClient builds a downloader for one upstream host family
// (Modrinth, Hangar, or "any URL"). ratePerSecond bounds how many Fetch
// calls per second may start against that host (burst 1); it does not
// limit bandwidth or concurrency. 0 disables limiting.
func NewHTTPClient(name string, ratePerSecond float64) *HTTPClient {
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}

	return &HTTPClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[Result](settings),
		limiter: limiter,
		backoff: defaultBackoff(),
	}
}

// Fetch downloads spec.URL to spec.DestPath, retrying with exponential
// backoff and verifying the configured digest. It never leaves a partial
// file at the final path: the download target is always
// `spec.DestPath + ".part"`, which is fsynced and closed, then checked
// against the digest (if any), and only renamed once that check passes.
func (c *HTTPClient) Fetch(ctx context.Context, spec Spec) (Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, apierr.Resource("FetchRateLimited", "rate limiter wait failed", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.backoff.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(c.backoff.delay(attempt)):
			}
		}

		result, err := c.breaker.Execute(func() (Result, error) {
			return c.attempt(ctx, spec)
		})
		if err == nil {
			return result, nil
		}

		lastErr = err
		if isIntegrityErr(err) {
			// Digest mismatches are never retried: the registry told us
			// exactly what bytes to expect and we did not get them.
			return Result{}, err
		}
		logging.Warn().Err(err).Str("url", spec.URL).Int("attempt", attempt).Msg("fetch: attempt failed")
	}

	return Result{}, apierr.Resource("FetchFailed", fmt.Sprintf("download failed after %d attempts", c.backoff.MaxAttempts), lastErr)
}

type integrityErr struct{ err error }

func (e *integrityErr) Error() string { return e.err.Error() }
func (e *integrityErr) Unwrap() error { return e.err }

func isIntegrityErr(err error) bool {
	_, ok := err.(*integrityErr)
	return ok
}

func (c *HTTPClient) attempt(ctx context.Context, spec Spec) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch: unexpected status %d for %s", resp.StatusCode, spec.URL)
	}

	partPath := spec.DestPath + ".part"
	if err := os.MkdirAll(filepath.Dir(spec.DestPath), 0o750); err != nil {
		return Result{}, fmt.Errorf("fetch: create destination directory: %w", err)
	}

	out, err := os.Create(partPath) //nolint:gosec // destination comes from internal caller, not request input
	if err != nil {
		return Result{}, fmt.Errorf("fetch: create partial file: %w", err)
	}

	var digester hash.Hash
	var wantDigest string
	switch {
	case spec.SHA256 != "":
		digester, wantDigest = sha256.New(), spec.SHA256
	case spec.SHA512 != "":
		digester, wantDigest = sha512.New(), spec.SHA512
	}

	var w io.Writer = out
	if digester != nil {
		w = io.MultiWriter(out, digester)
	}

	n, copyErr := io.Copy(w, resp.Body)
	syncErr := out.Sync()
	closeErr := out.Close()

	if err := firstNonNil(copyErr, syncErr, closeErr); err != nil {
		_ = os.Remove(partPath)
		return Result{}, fmt.Errorf("fetch: write download: %w", err)
	}

	var verified string
	if digester != nil {
		got := hex.EncodeToString(digester.Sum(nil))
		if got != wantDigest {
			_ = os.Remove(partPath)
			return Result{}, &integrityErr{err: apierr.Integrity("DigestMismatch",
				fmt.Sprintf("expected %s, got %s", wantDigest, got), nil)}
		}
		verified = got
	}

	if err := os.Rename(partPath, spec.DestPath); err != nil {
		_ = os.Remove(partPath)
		return Result{}, fmt.Errorf("fetch: rename into place: %w", err)
	}

	return Result{Path: spec.DestPath, VerifiedDigest: verified, Bytes: n}, nil
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
