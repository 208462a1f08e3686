// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package main is the entry point for msmd, the Minecraft Server
// Management Daemon.
//
// msmd supervises long-running Minecraft server processes on a single
// host: it starts and stops them, streams their console, installs
// plugins, takes backups, and fires cron-style schedules, all behind a
// local JSON REST + WebSocket API.
//
// # Application Architecture
//
// main initializes components in the following order:
//
//  1. Configuration: Koanf v2, layered (defaults -> config file -> env)
//  2. Logging: zerolog, configured from the loaded config
//  3. Store: the embedded DuckDB-backed Gateway
//  4. Platform: Java runtime discovery, TTL-cached on disk
//  5. Registry + Supervisor Tree: engine/api/children suture layers
//  6. Fetchers: Modrinth, Hangar, and raw-URL plugin/jar resolvers
//  7. Lifecycle Engine: the Create/Start/Stop/Status state machine
//  8. Backup Manager, Schedule Dispatcher, Reconciler
//  9. HTTP Server: the chi router, added to the tree as an API service
//
// # Signal Handling
//
// msmd handles graceful shutdown on SIGINT and SIGTERM: it cancels the
// root context, which the supervisor tree propagates to every service,
// each of which gets up to its configured ShutdownTimeout to stop.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/msmd/internal/api"
	"github.com/tomtom215/msmd/internal/backup"
	"github.com/tomtom215/msmd/internal/config"
	"github.com/tomtom215/msmd/internal/fetch"
	"github.com/tomtom215/msmd/internal/lifecycle"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/reconcile"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/schedule"
	"github.com/tomtom215/msmd/internal/store"
	"github.com/tomtom215/msmd/internal/supervisor"
	"github.com/tomtom215/msmd/internal/supervisor/services"
)

//nolint:gocyclo // sequential daemon bootstrap, mirrors the teacher's cmd/server/main.go
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("data_root", cfg.Daemon.DataRoot).
		Str("db_path", cfg.Database.Path).
		Str("http_addr", cfg.HTTP.Addr).
		Msg("Starting msmd")

	gateway, err := store.Open(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store opened")

	backend := platform.New()
	discoverer, err := platform.NewCachedDiscoverer(backend, cfg.Daemon.DataRoot, 0)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize Java runtime discoverer")
	}

	reg := registry.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build supervisor tree")
	}

	modrinth := fetch.NewModrinthFetcher()
	hangar := fetch.NewHangarFetcher()
	urlFetcher := fetch.NewURLFetcher()
	jars := fetch.NewJarResolver(urlFetcher)

	engine := lifecycle.New(gateway, backend, reg, tree, jars, cfg.Daemon.RingCapacity)

	backups := backup.New(gateway, reg, cfg.Daemon.DataRoot)

	dispatcher := schedule.NewDispatcher(gateway, lifecycle.NewScheduleAdapter(engine), backups)
	tree.AddEngineService(dispatcher)
	logging.Info().Msg("Schedule dispatcher added to supervisor tree")

	reconciler := reconcile.New(gateway, backend, reg, engine).
		WithPeriods(cfg.Daemon.ReconcilePeriod, cfg.Daemon.SweepInterval, cfg.Daemon.SweepTTL)
	tree.AddEngineService(reconciler)
	logging.Info().Msg("Reconciler added to supervisor tree")

	handler := api.NewHandler(gateway, engine, backups, reg, discoverer, modrinth, hangar, urlFetcher, jars, cfg.Daemon.DataRoot)
	handler.SetAllowedOrigins(cfg.HTTP.CORSOrigins)

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.HTTP.CORSOrigins,
		RateLimitRequests:  cfg.HTTP.RateLimitPerMinute,
	})
	router := api.NewRouter(handler, gateway, mw)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.HTTP.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("msmd stopped gracefully")
}
