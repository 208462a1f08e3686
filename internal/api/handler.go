// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"context"
	"time"

	"github.com/tomtom215/msmd/internal/backup"
	"github.com/tomtom215/msmd/internal/fetch"
	"github.com/tomtom215/msmd/internal/lifecycle"
	"github.com/tomtom215/msmd/internal/middleware"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
)

// performanceSampleWindow bounds how many recent requests the
// diagnostics endpoint's percentile calculations are based on.
const performanceSampleWindow = 1000

// RuntimeDiscoverer is the capability the /java endpoint needs: a scan
// for installed Java runtimes, optionally cache-fronted by
// platform.CachedDiscoverer.
type RuntimeDiscoverer interface {
	DiscoverRuntimes(ctx context.Context) ([]platform.Runtime, error)
}

// Handler bundles every dependency the route handlers need. It holds its
// own *store.Gateway (the Lifecycle Engine's is private) for list/query
// operations the Engine itself doesn't expose: listing servers, plugins,
// schedules and API keys.
type Handler struct {
	gateway    *store.Gateway
	engine     *lifecycle.Engine
	backups    *backup.Manager
	registry   *registry.Registry
	discoverer RuntimeDiscoverer

	modrinth *fetch.ModrinthFetcher
	hangar   *fetch.HangarFetcher
	url      *fetch.URLFetcher
	jars     *fetch.JarResolver

	dataRoot  string
	startedAt time.Time

	allowedOrigins []string

	perf *middleware.PerformanceMonitor
}

// SetAllowedOrigins configures the origins the console WebSocket upgrade
// will accept, mirroring the CORS allow-list applied to ordinary REST
// routes. Call once during startup, before the router starts serving.
func (h *Handler) SetAllowedOrigins(origins []string) {
	h.allowedOrigins = origins
}

// NewHandler constructs a Handler. dataRoot anchors the same
// path-traversal discipline internal/lifecycle's delete path applies,
// reused here for any handler that takes a user-supplied relative path.
func NewHandler(
	gateway *store.Gateway,
	engine *lifecycle.Engine,
	backups *backup.Manager,
	reg *registry.Registry,
	discoverer RuntimeDiscoverer,
	modrinth *fetch.ModrinthFetcher,
	hangar *fetch.HangarFetcher,
	urlFetcher *fetch.URLFetcher,
	jars *fetch.JarResolver,
	dataRoot string,
) *Handler {
	return &Handler{
		gateway:    gateway,
		engine:     engine,
		backups:    backups,
		registry:   reg,
		discoverer: discoverer,
		modrinth:   modrinth,
		hangar:     hangar,
		url:        urlFetcher,
		jars:       jars,
		dataRoot:   dataRoot,
		startedAt:  time.Now(),
		perf:       middleware.NewPerformanceMonitor(performanceSampleWindow),
	}
}
