// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for msmd's own domain:
// - Data Store Gateway scope performance (DuckDB)
// - API endpoint latency and throughput
// - Managed server lifecycle transitions
// - Console fabric fan-out and WebSocket connections
// - Runtime-discovery cache efficiency
// - External fetcher circuit breaker state
// - Reconciler and scheduler activity

var (
	// Data Store Gateway Metrics
	DBScopeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckdb_scope_duration_seconds",
			Help:    "Duration of store.Gateway.WithScope transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DBScopeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duckdb_scope_errors_total",
			Help: "Total number of WithScope transactions that rolled back",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Managed Server Lifecycle Metrics
	ServerStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msmd_server_starts_total",
			Help: "Total number of ManagedServer start attempts",
		},
		[]string{"distribution", "outcome"}, // outcome: "ok", "error"
	)

	ServerStops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msmd_server_stops_total",
			Help: "Total number of ManagedServer stop attempts",
		},
		[]string{"distribution", "outcome"},
	)

	ServersRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "msmd_servers_running",
			Help: "Current number of ManagedServers registered as running",
		},
	)

	// Console Fabric / WebSocket Metrics
	ConsoleSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "msmd_console_subscribers",
			Help: "Current number of connected console WebSocket subscribers",
		},
	)

	ConsoleFramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msmd_console_frames_dropped_total",
			Help: "Total number of console frames dropped because a subscriber's queue was full",
		},
		[]string{"type"},
	)

	WSOriginRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "msmd_websocket_origin_rejections_total",
			Help: "Total number of console WebSocket upgrades rejected for a disallowed Origin",
		},
	)

	// Runtime Discovery Cache Metrics
	RuntimeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "msmd_runtime_cache_hits_total",
			Help: "Total number of Java runtime discovery cache hits",
		},
	)

	RuntimeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "msmd_runtime_cache_misses_total",
			Help: "Total number of Java runtime discovery cache misses (fresh scan performed)",
		},
	)

	// External Fetcher Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "msmd_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msmd_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Reconciler / Scheduler Metrics
	ReconcileRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "msmd_reconcile_runs_total",
			Help: "Total number of reconciliation passes completed",
		},
	)

	ReconcileDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "msmd_reconcile_drift_total",
			Help: "Total number of servers found with recorded state diverging from OS reality",
		},
	)

	ScheduleFires = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msmd_schedule_fires_total",
			Help: "Total number of schedule actions dispatched",
		},
		[]string{"action", "outcome"},
	)
)

// RecordDBScope records a store.Gateway.WithScope transaction outcome.
func RecordDBScope(duration time.Duration, err error) {
	DBScopeDuration.Observe(duration.Seconds())
	if err != nil {
		DBScopeErrors.Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordServerStart records a ManagedServer start attempt.
func RecordServerStart(distribution string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ServerStarts.WithLabelValues(distribution, outcome).Inc()
}

// RecordServerStop records a ManagedServer stop attempt.
func RecordServerStop(distribution string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ServerStops.WithLabelValues(distribution, outcome).Inc()
}

// SetServersRunning sets the current running-server gauge.
func SetServersRunning(count int) {
	ServersRunning.Set(float64(count))
}

// RecordConsoleFrameDropped records a console frame dropped for a full subscriber queue.
func RecordConsoleFrameDropped(frameType string) {
	ConsoleFramesDropped.WithLabelValues(frameType).Inc()
}

// RecordWSOriginRejection records a console WebSocket upgrade rejected for Origin.
func RecordWSOriginRejection() {
	WSOriginRejections.Inc()
}

// RecordRuntimeCacheHit records a Java runtime discovery cache hit.
func RecordRuntimeCacheHit() {
	RuntimeCacheHits.Inc()
}

// RecordRuntimeCacheMiss records a Java runtime discovery cache miss.
func RecordRuntimeCacheMiss() {
	RuntimeCacheMisses.Inc()
}

// RecordReconcileRun records a completed reconciliation pass, and how
// many servers it found drifted from their recorded state.
func RecordReconcileRun(drifted int) {
	ReconcileRuns.Inc()
	ReconcileDrift.Add(float64(drifted))
}

// RecordScheduleFire records a dispatched schedule action.
func RecordScheduleFire(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ScheduleFires.WithLabelValues(action, outcome).Inc()
}
