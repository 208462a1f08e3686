// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for compression, performance
monitoring, request ID tracking, and Prometheus metrics integration. These
components work alongside the authentication middleware to create a complete
middleware stack for HTTP request processing.

Key Components:

  - Compression: Gzip compression of every response when the client accepts gzip
  - Performance Monitor: Request latency tracking with percentile calculations
  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Middleware Stack:

internal/api.NewRouter installs the global stack on its chi router,
outermost first (CORS, RateLimit and SecurityHeaders are internal/api's
own middleware; adaptMiddleware turns this package's HandlerFunc
wrappers into chi middleware):

	r.Use(chimiddleware.Recoverer)                       // Layer 1: Panic recovery
	r.Use(mw.CORS())                                     // Layer 2: CORS headers
	r.Use(mw.RateLimit())                                // Layer 3: Rate limiting
	r.Use(SecurityHeaders())                             // Layer 4: Security headers
	r.Use(adaptMiddleware(middleware.RequestID))         // Layer 5: Request tracking
	r.Use(adaptMiddleware(middleware.PrometheusMetrics)) // Layer 6: Metrics
	r.Use(h.perf.Middleware)                             // Layer 7: Latency samples
	r.Use(adaptMiddleware(middleware.Compression))       // Layer 8: Gzip

Usage Example - Compression:

	import "github.com/tomtom215/msmd/internal/middleware"

	// Wrap handler with gzip compression
	http.HandleFunc("/api/v1/data",
	    middleware.Compression(handler),
	)

	// Every response is compressed, whatever its size
	// Accept-Encoding: gzip header is required

Usage Example - Performance Monitoring:

	// Create performance monitor with a 1000-request sliding window
	perfMon := middleware.NewPerformanceMonitor(1000)

	// Wrap handler
	http.Handle("/api/v1/stats",
	    perfMon.Middleware(handler),
	)

	// Get per-endpoint percentile statistics
	for _, s := range perfMon.GetStats() {
	    fmt.Printf("%s: p50=%dms p95=%dms p99=%dms\n", s.Path, s.P50Duration, s.P95Duration, s.P99Duration)
	}

Usage Example - Request ID:

	// Request ID middleware
	http.HandleFunc("/api/v1/logs",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := r.Context().Value(middleware.RequestIDKey).(string)
	    log.Printf("[%s] Processing request", requestID)
	}

Performance Characteristics:

  - Compression: 70-90% size reduction for JSON (text/json mime types)
  - Compression overhead: ~1-2ms for typical responses
  - Metrics overhead: <0.1ms per request
  - Request ID overhead: <0.01ms (UUID generation)
  - Performance monitor: RWMutex-guarded slice of recent latency samples

Compression Details:

The compression middleware:
  - Compresses every response when Accept-Encoding contains gzip; there is
    no size threshold and no filtering by content type
  - Passes WebSocket upgrade requests through uncompressed
  - Sets the Content-Encoding header and removes Content-Length

Performance Monitor:

The performance monitor tracks:
  - Request count per endpoint (no error rate is computed)
  - Latency percentiles (p50, p95, p99)
  - Rolling window of the most recent requests, sized by the
    NewPerformanceMonitor argument (internal/api passes 1000)
  - Thread-safe concurrent access with RWMutex

Thread Safety:

All middleware components are thread-safe:
  - Compression uses per-request gzip writers
  - Performance monitor uses sync.RWMutex
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/auth: Authentication middleware
  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
