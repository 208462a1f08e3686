// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

/*
Package metrics provides Prometheus metrics collection and export for msmd.

This package follows the teacher's instrumentation shape (promauto
collectors registered at package init, package-level Record and Set
helpers wrapping WithLabelValues) but carries msmd's own metric set
instead of the teacher's media-analytics one.

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format by
internal/api.NewRouter:

	curl http://127.0.0.1:8642/metrics

# Available Metrics

Data Store Gateway:
  - duckdb_scope_duration_seconds: WithScope transaction duration (histogram)
  - duckdb_scope_errors_total: WithScope transactions that rolled back (counter)

API:
  - api_requests_total: requests by method/endpoint/status_code (counter)
  - api_request_duration_seconds: request latency by method/endpoint (histogram)
  - api_active_requests: requests currently in flight (gauge)
  - api_rate_limit_hits_total: rejections by endpoint (counter)

Managed server lifecycle:
  - msmd_server_starts_total: start attempts by distribution/outcome (counter)
  - msmd_server_stops_total: stop attempts by distribution/outcome (counter)
  - msmd_servers_running: servers currently tracked in the Process Registry (gauge)

Console fabric / WebSocket:
  - msmd_console_subscribers: live console WebSocket subscribers (gauge)
  - msmd_console_frames_dropped_total: frames dropped on a full subscriber
    queue, by frame type (counter)
  - msmd_websocket_origin_rejections_total: upgrades rejected for Origin (counter)

Runtime discovery cache:
  - msmd_runtime_cache_hits_total / msmd_runtime_cache_misses_total

External fetcher circuit breaker:
  - msmd_circuit_breaker_state: 0=closed, 1=half-open, 2=open, by name (gauge)
  - msmd_circuit_breaker_state_transitions_total: by name/from_state/to_state (counter)

Reconciler / scheduler:
  - msmd_reconcile_runs_total, msmd_reconcile_drift_total
  - msmd_schedule_fires_total: by action/outcome (counter)

# See Also

  - internal/middleware: PrometheusMetrics HTTP middleware
  - internal/store, internal/lifecycle, internal/console, internal/platform,
    internal/fetch, internal/reconcile, internal/schedule: metric call sites
*/
package metrics
