// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/msmd/internal/auth"
	"github.com/tomtom215/msmd/internal/middleware"
	"github.com/tomtom215/msmd/internal/store"
)

// NewRouter assembles the chi router for every msmd HTTP route,
// following the teacher's chi_router.go grouping: a global middleware
// stack, then per-feature route groups, auth enforcement applied as
// group-scoped middleware rather than per-handler checks.
func NewRouter(h *Handler, gateway *store.Gateway, mw *ChiMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(mw.RateLimit())
	r.Use(SecurityHeaders())
	r.Use(adaptMiddleware(middleware.RequestID))
	r.Use(adaptMiddleware(middleware.PrometheusMetrics))
	r.Use(h.perf.Middleware)
	r.Use(adaptMiddleware(middleware.Compression))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.RequireKeyIfConfigured(gateway))

		r.Route("/servers", func(r chi.Router) {
			r.Get("/", h.ListServers)
			r.Post("/", h.CreateServer)
			r.Post("/import", h.ImportServer)

			r.Route("/{serverID}", func(r chi.Router) {
				r.Get("/", h.GetServer)
				r.Patch("/", h.UpdateServer)
				r.Delete("/", h.DeleteServer)

				r.Post("/start", h.StartServer)
				r.Post("/stop", h.StopServer)
				r.Post("/restart", h.RestartServer)
				r.Get("/status", h.ServerStatus)
				r.Post("/command", h.SendCommand)
				r.Get("/console", h.ConsoleWebSocket)

				r.Get("/backups", h.ListBackups)
				r.Post("/backups", h.CreateBackup)

				r.Get("/plugins", h.ListPlugins)
				r.Post("/plugins", h.InstallPlugin)

				r.Get("/schedules", h.ListSchedules)
				r.Post("/schedules", h.CreateSchedule)

				r.Get("/properties", h.GetProperties)
				r.Put("/properties", h.PutProperties)
			})
		})

		r.Route("/backups/{backupID}", func(r chi.Router) {
			r.Post("/restore", h.RestoreBackup)
			r.Delete("/", h.DeleteBackup)
		})

		r.Route("/plugins/{pluginID}", func(r chi.Router) {
			r.Patch("/", h.SetPluginEnabled)
			r.Delete("/", h.DeletePlugin)
		})

		r.Route("/schedules/{scheduleID}", func(r chi.Router) {
			r.Patch("/", h.SetScheduleEnabled)
			r.Delete("/", h.DeleteSchedule)
		})

		r.Get("/java", h.ListRuntimes)
		r.Get("/diagnostics/performance", h.Diagnostics)

		r.Route("/keys", func(r chi.Router) {
			r.Get("/", h.ListAPIKeys)
			r.Post("/", h.IssueAPIKey)
			r.Delete("/{keyID}", h.RevokeAPIKey)
		})
	})

	return r
}

// adaptMiddleware bridges the teacher's http.HandlerFunc-style
// middleware (internal/middleware.RequestID) to chi's
// func(http.Handler) http.Handler convention.
func adaptMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}
