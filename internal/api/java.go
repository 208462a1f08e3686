// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import "net/http"

// ListRuntimes handles GET /api/v1/java: the Java installations this
// host's platform backend could discover, cached by the handler's
// platform.CachedDiscoverer.
func (h *Handler) ListRuntimes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	runtimes, err := h.discoverer.DiscoverRuntimes(r.Context())
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(runtimes)
}
