// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import "net/http"

// Diagnostics handles GET /api/v1/diagnostics/performance: per-endpoint
// request latency percentiles from the in-process sliding-window
// middleware.PerformanceMonitor, for operators without a Prometheus
// scraper wired up yet.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(h.perf.GetStats())
}
