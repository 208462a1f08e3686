// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// ChiMiddlewareConfig holds configuration for the Chi middleware
// factories, generalized from the teacher's ChiMiddlewareConfig down to
// the two concerns msmd's single-operator HTTP surface actually needs:
// CORS and a per-IP rate limit.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// DefaultChiMiddlewareConfig returns a secure default: CORS disabled
// (no allowed origins), a conservative per-IP request budget.
func DefaultChiMiddlewareConfig() ChiMiddlewareConfig {
	return ChiMiddlewareConfig{
		CORSAllowedOrigins: nil,
		RateLimitRequests:  120,
		RateLimitWindow:    time.Minute,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories built from
// production-hardened libraries, per the teacher's internal/api's
// ADR-0016 rationale for adopting the Chi ecosystem instead of
// hand-rolled CORS/rate-limit handlers.
type ChiMiddleware struct {
	config ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds a ChiMiddleware from config.
func NewChiMiddleware(config ChiMiddlewareConfig) *ChiMiddleware {
	origins := config.CORSAllowedOrigins
	if origins == nil {
		origins = []string{}
	}
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	return &ChiMiddleware{config: config, cors: corsHandler}
}

// CORS returns the configured CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter built from go-chi/httprate.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	requests := m.config.RateLimitRequests
	if requests <= 0 {
		requests = 120
	}
	window := m.config.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(requests, window)
}

// SecurityHeaders sets the same conservative response headers the
// teacher's internal/api applies to every API response: no MIME
// sniffing, no framing, no caching of potentially sensitive JSON.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
