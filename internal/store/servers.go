// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/msmd/internal/models"
)

const serverColumns = `id, name, distribution, version, working_dir, jar_name, port, heap_size,
	runtime_path, restart_on_crash, running, pid, last_started, last_stopped,
	created_at, updated_at`

func scanServer(row interface{ Scan(...any) error }) (models.ManagedServer, error) {
	var s models.ManagedServer
	var runtimePath sql.NullString
	var pid sql.NullInt64
	var lastStarted, lastStopped sql.NullTime

	err := row.Scan(
		&s.ID, &s.Name, &s.Distribution, &s.Version, &s.WorkingDir, &s.JarName, &s.Port, &s.HeapSize,
		&runtimePath, &s.RestartOnCrash, &s.Running, &pid, &lastStarted, &lastStopped,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return models.ManagedServer{}, err
	}
	if runtimePath.Valid {
		s.RuntimePath = runtimePath.String
	}
	if pid.Valid {
		v := int(pid.Int64)
		s.PID = &v
	}
	if lastStarted.Valid {
		t := lastStarted.Time
		s.LastStarted = &t
	}
	if lastStopped.Valid {
		t := lastStopped.Time
		s.LastStopped = &t
	}
	return s, nil
}

// FindServerByID returns a snapshot of the server with the given id.
func (s *Scope) FindServerByID(ctx context.Context, id int64) (models.ManagedServer, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+serverColumns+` FROM servers WHERE id = ?`, id)
	server, err := scanServer(row)
	if err != nil {
		return models.ManagedServer{}, notFound("ServerNotFound", fmt.Sprintf("server %d not found", id), err)
	}
	return server, nil
}

// FindServerByName returns a snapshot of the server with the given unique
// name.
func (s *Scope) FindServerByName(ctx context.Context, name string) (models.ManagedServer, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+serverColumns+` FROM servers WHERE name = ?`, name)
	server, err := scanServer(row)
	if err != nil {
		return models.ManagedServer{}, notFound("ServerNotFound", fmt.Sprintf("server %q not found", name), err)
	}
	return server, nil
}

// ListServers returns a snapshot of every managed server.
func (s *Scope) ListServers(ctx context.Context) ([]models.ManagedServer, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+serverColumns+` FROM servers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list servers: %w", err)
	}
	defer rows.Close()

	var out []models.ManagedServer
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan server: %w", err)
		}
		out = append(out, server)
	}
	return out, rows.Err()
}

// InsertServer creates a new server record from spec and returns the
// assigned id.
func (s *Scope) InsertServer(ctx context.Context, server models.ManagedServer) (int64, error) {
	var id int64
	jarName := server.JarName
	if jarName == "" {
		jarName = "server.jar"
	}
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO servers (name, distribution, version, working_dir, jar_name, port, heap_size, runtime_path, restart_on_crash, running)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, false)
		RETURNING id
	`, server.Name, server.Distribution, server.Version, server.WorkingDir, jarName, server.Port, server.HeapSize,
		nullableString(server.RuntimePath), server.RestartOnCrash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert server: %w", err)
	}
	return id, nil
}

// UpdateServerRuntimeState persists the running/pid/last-started/
// last-stopped quadruple the Lifecycle Engine and Reconciler mutate. A nil
// lastStarted or lastStopped leaves the corresponding column unchanged.
func (s *Scope) UpdateServerRuntimeState(ctx context.Context, id int64, running bool, pid *int, lastStarted, lastStopped *time.Time) error {
	var pidArg any
	if pid != nil {
		pidArg = *pid
	}
	var startedArg, stoppedArg any
	if lastStarted != nil {
		startedArg = *lastStarted
	}
	if lastStopped != nil {
		stoppedArg = *lastStopped
	}

	_, err := s.tx.ExecContext(ctx, `
		UPDATE servers SET running = ?, pid = ?,
			last_started = COALESCE(?, last_started),
			last_stopped = COALESCE(?, last_stopped),
			updated_at = current_timestamp
		WHERE id = ?
	`, running, pidArg, startedArg, stoppedArg, id)
	if err != nil {
		return fmt.Errorf("store: update server runtime state: %w", err)
	}
	return nil
}

// UpdateServer persists full configuration changes (PATCH semantics).
func (s *Scope) UpdateServer(ctx context.Context, server models.ManagedServer) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE servers SET distribution = ?, version = ?, working_dir = ?, port = ?, heap_size = ?,
			runtime_path = ?, restart_on_crash = ?, updated_at = current_timestamp
		WHERE id = ?
	`, server.Distribution, server.Version, server.WorkingDir, server.Port, server.HeapSize,
		nullableString(server.RuntimePath), server.RestartOnCrash, server.ID)
	if err != nil {
		return fmt.Errorf("store: update server: %w", err)
	}
	return nil
}

// DeleteServer removes the server record. It does not touch the working
// directory or any weakly-referenced backup rows — that is the Lifecycle
// Engine's responsibility under the anti-traversal check in §4.4.
func (s *Scope) DeleteServer(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete server: %w", err)
	}
	return nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
