// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
)

// Start brings up serverID's process: ensures the jar and EULA are in
// place, checks the configured port is free, spawns the JVM, registers
// it in the Process Registry, and persists the new running state.
// Returns the spawned pid.
func (e *Engine) Start(ctx context.Context, serverID int64) (int, error) {
	var server models.ManagedServer
	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, serverID)
		if err != nil {
			return err
		}

		if server.Running {
			if server.PID != nil && e.backend.IsAlive(*server.PID) {
				return apierr.ErrAlreadyRunning
			}
			// Stale: the DB says running but the OS disagrees. Heal it and
			// continue with a fresh start.
			server.Running = false
			server.PID = nil
			return s.UpdateServerRuntimeState(ctx, serverID, false, nil, nil, nil)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	pid, startErr := e.doStart(ctx, server)
	if startErr != nil {
		metrics.RecordServerStart(server.Distribution, startErr)
		return 0, startErr
	}

	now := time.Now()
	err = e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		p := pid
		return s.UpdateServerRuntimeState(ctx, serverID, true, &p, &now, nil)
	})
	if err != nil {
		metrics.RecordServerStart(server.Distribution, err)
		return 0, fmt.Errorf("lifecycle: persist running state: %w", err)
	}

	metrics.RecordServerStart(server.Distribution, nil)
	return pid, nil
}

// doStart performs every blocking step of a start with no store scope
// held: directory/jar/EULA preparation, the port-conflict check, the
// spawn itself, and registration with the Process Registry and
// supervisor tree.
func (e *Engine) doStart(ctx context.Context, server models.ManagedServer) (int, error) {
	if err := os.MkdirAll(server.WorkingDir, 0o750); err != nil {
		return 0, apierr.Resource("WorkingDirFailed", "failed to create working directory", err)
	}

	jarName := server.JarName
	if jarName == "" {
		jarName = defaultJarName
	}
	jarPath := filepath.Join(server.WorkingDir, jarName)
	if _, statErr := os.Stat(jarPath); statErr != nil {
		if e.jars == nil {
			return 0, apierr.Resource("JarMissing", "server jar is missing and no fetcher is configured", statErr)
		}
		if _, fetchErr := e.jars.Resolve(ctx, server.Distribution, server.Version, jarPath); fetchErr != nil {
			return 0, apierr.Resource("JarFetchFailed", "failed to fetch server jar", fetchErr)
		}
	}

	if err := checkEULA(server.WorkingDir); err != nil {
		return 0, err
	}

	check, err := e.backend.FreePort(server.Port)
	if err != nil {
		return 0, apierr.Resource("PortCheckFailed", "failed to probe tcp port", err)
	}
	if !check.Free {
		return 0, apierr.PortInUse(check.HolderPID)
	}

	runtimePath, err := e.resolveRuntime(ctx, server)
	if err != nil {
		return 0, err
	}
	argv := composeArgv(runtimePath, server)

	child, err := e.backend.Spawn(ctx, platform.SpawnRequest{WorkDir: server.WorkingDir, Argv: argv})
	if err != nil {
		return 0, apierr.Resource("SpawnFailed", "failed to spawn server process", err)
	}

	fabric := e.newFabric(server.ID)
	fabric.SetStdin(child.Stdin)

	if _, err := e.registry.Add(server.ID, child, fabric); err != nil {
		_ = e.backend.SignalForce(child.PID)
		return 0, apierr.Conflict("AlreadyTracked", "server is already tracked in the process registry", nil)
	}

	svc := &registry.ChildService{
		ServerID: server.ID,
		Child:    child,
		Fabric:   fabric,
		OnExit:   e.handleExit,
	}
	token := e.tree.AddChildService(svc)
	e.mu.Lock()
	if e.tokens == nil {
		e.tokens = make(map[int64]suture.ServiceToken)
	}
	e.tokens[server.ID] = token
	e.mu.Unlock()

	logging.Info().Int64("server_id", server.ID).Int("pid", child.PID).Msg("lifecycle: server started")
	return child.PID, nil
}
