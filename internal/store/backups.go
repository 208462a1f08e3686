// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"context"
	"fmt"
	"os"

	"github.com/tomtom215/msmd/internal/models"
)

const backupColumns = `id, server_id, file_path, size_bytes, kind, status, created_at`

func scanBackup(row interface{ Scan(...any) error }) (models.Backup, error) {
	var b models.Backup
	err := row.Scan(&b.ID, &b.ServerID, &b.FilePath, &b.SizeBytes, &b.Kind, &b.Status, &b.CreatedAt)
	if err != nil {
		return models.Backup{}, err
	}
	if _, statErr := os.Stat(b.FilePath); statErr != nil {
		// The archive is the source of truth: a missing file marks this
		// row "broken" rather than being silently dropped from the
		// catalog.
		b.Broken = true
	}
	return b, nil
}

// FindBackupByID returns a snapshot of one backup record.
func (s *Scope) FindBackupByID(ctx context.Context, id int64) (models.Backup, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+backupColumns+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err != nil {
		return models.Backup{}, notFound("BackupNotFound", fmt.Sprintf("backup %d not found", id), err)
	}
	return b, nil
}

// ListBackupsForServer returns every backup catalog entry weakly
// referencing serverID, newest first.
func (s *Scope) ListBackupsForServer(ctx context.Context, serverID int64) ([]models.Backup, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+backupColumns+` FROM backups WHERE server_id = ? ORDER BY created_at DESC`, serverID)
	if err != nil {
		return nil, fmt.Errorf("store: list backups: %w", err)
	}
	defer rows.Close()

	var out []models.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan backup: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertBackup creates a catalog entry, typically with StatusInProgress
// before the archive write begins.
func (s *Scope) InsertBackup(ctx context.Context, b models.Backup) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO backups (server_id, file_path, size_bytes, kind, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, b.ServerID, b.FilePath, b.SizeBytes, b.Kind, b.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert backup: %w", err)
	}
	return id, nil
}

// UpdateBackupStatus transitions a backup's status and final size once
// the archive write completes or fails.
func (s *Scope) UpdateBackupStatus(ctx context.Context, id int64, status models.BackupStatus, sizeBytes int64) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE backups SET status = ?, size_bytes = ? WHERE id = ?`, status, sizeBytes, id)
	if err != nil {
		return fmt.Errorf("store: update backup status: %w", err)
	}
	return nil
}

// DeleteBackup removes the catalog entry only; callers are responsible
// for removing the archive file themselves.
func (s *Scope) DeleteBackup(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete backup: %w", err)
	}
	return nil
}
