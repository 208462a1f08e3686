// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/msmd/internal/models"
)

const pluginColumns = `id, server_id, name, source, source_project_id, installed_version, file_path, enabled`

func scanPlugin(row interface{ Scan(...any) error }) (models.Plugin, error) {
	var p models.Plugin
	var sourceProjectID, installedVersion sql.NullString
	err := row.Scan(&p.ID, &p.ServerID, &p.Name, &p.Source, &sourceProjectID, &installedVersion, &p.FilePath, &p.Enabled)
	if err != nil {
		return models.Plugin{}, err
	}
	p.SourceProjectID = sourceProjectID.String
	p.InstalledVersion = installedVersion.String
	return p, nil
}

// FindPluginByID returns a snapshot of one plugin record.
func (s *Scope) FindPluginByID(ctx context.Context, id int64) (models.Plugin, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+pluginColumns+` FROM plugins WHERE id = ?`, id)
	p, err := scanPlugin(row)
	if err != nil {
		return models.Plugin{}, notFound("PluginNotFound", fmt.Sprintf("plugin %d not found", id), err)
	}
	return p, nil
}

// ListPluginsForServer returns every plugin owned by serverID.
func (s *Scope) ListPluginsForServer(ctx context.Context, serverID int64) ([]models.Plugin, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+pluginColumns+` FROM plugins WHERE server_id = ? ORDER BY id`, serverID)
	if err != nil {
		return nil, fmt.Errorf("store: list plugins: %w", err)
	}
	defer rows.Close()

	var out []models.Plugin
	for rows.Next() {
		p, err := scanPlugin(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan plugin: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertPlugin creates a new plugin record.
func (s *Scope) InsertPlugin(ctx context.Context, p models.Plugin) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO plugins (server_id, name, source, source_project_id, installed_version, file_path, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, p.ServerID, p.Name, p.Source, nullableString(p.SourceProjectID), nullableString(p.InstalledVersion), p.FilePath, p.Enabled).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert plugin: %w", err)
	}
	return id, nil
}

// SetPluginEnabled follows a file-rename: the caller renames the jar file
// first, then calls this so the record follows the file, never the
// reverse.
func (s *Scope) SetPluginEnabled(ctx context.Context, id int64, enabled bool, newFilePath string) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE plugins SET enabled = ?, file_path = ? WHERE id = ?`, enabled, newFilePath, id)
	if err != nil {
		return fmt.Errorf("store: set plugin enabled: %w", err)
	}
	return nil
}

// DeletePlugin removes a plugin record. Called when its owning server is
// deleted (plugins are owned, not weakly referenced).
func (s *Scope) DeletePlugin(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx, `DELETE FROM plugins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete plugin: %w", err)
	}
	return nil
}

// DeletePluginsForServer removes every plugin record owned by serverID,
// used by the Lifecycle Engine's delete operation.
func (s *Scope) DeletePluginsForServer(ctx context.Context, serverID int64) error {
	_, err := s.tx.ExecContext(ctx, `DELETE FROM plugins WHERE server_id = ?`, serverID)
	if err != nil {
		return fmt.Errorf("store: delete plugins for server: %w", err)
	}
	return nil
}
