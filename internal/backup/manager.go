// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package backup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
)

// timestampLayout produces the spec's "YYYYMMDD_HHMMSS" archive suffix.
const timestampLayout = "20060102_150405"

// Manager creates, lists, restores and deletes per-server backup
// archives. It satisfies internal/schedule's BackupCreator.
type Manager struct {
	gateway    *store.Gateway
	registry   *registry.Registry
	backupsDir string
}

// New builds a Manager storing archives under <dataRoot>/backups.
func New(gateway *store.Gateway, reg *registry.Registry, dataRoot string) *Manager {
	return &Manager{
		gateway:    gateway,
		registry:   reg,
		backupsDir: filepath.Join(dataRoot, "backups"),
	}
}

// CreateBackup archives serverID's working directory. The catalog row
// is inserted in-progress before the (potentially slow) archive write,
// and finalized to completed/failed afterward, so a crash mid-write
// leaves a visibly broken row rather than a silently missing one.
func (m *Manager) CreateBackup(ctx context.Context, serverID int64, kind models.BackupKind) error {
	var server models.ManagedServer
	var backupID int64
	var destPath string

	err := m.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, serverID)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(m.backupsDir, 0o750); err != nil {
			return apierr.Resource("BackupDirUnavailable", "failed to create backups directory", err)
		}

		fileName := server.Name + "_" + time.Now().Format(timestampLayout) + ".tar.gz"
		destPath = filepath.Join(m.backupsDir, fileName)

		backupID, err = s.InsertBackup(ctx, models.Backup{
			ServerID: serverID,
			FilePath: destPath,
			Kind:     kind,
			Status:   models.BackupStatusInProgress,
		})
		return err
	})
	if err != nil {
		return err
	}

	size, archiveErr := createArchive(server.WorkingDir, server.Name, destPath)

	finalStatus := models.BackupStatusCompleted
	if archiveErr != nil {
		finalStatus = models.BackupStatusFailed
		logging.Error().Err(archiveErr).Int64("server_id", serverID).Int64("backup_id", backupID).
			Msg("backup: archive write failed")
		_ = os.Remove(destPath)
		size = 0
	}

	updateErr := m.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		return s.UpdateBackupStatus(ctx, backupID, finalStatus, size)
	})
	if updateErr != nil {
		logging.Error().Err(updateErr).Int64("backup_id", backupID).Msg("backup: failed to finalize catalog status")
	}

	if archiveErr != nil {
		return apierr.Resource("BackupFailed", "failed to archive working directory", archiveErr)
	}
	return nil
}

// ListBackups returns every catalog entry for serverID, newest first.
func (m *Manager) ListBackups(ctx context.Context, serverID int64) ([]models.Backup, error) {
	var out []models.Backup
	err := m.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		out, err = s.ListBackupsForServer(ctx, serverID)
		return err
	})
	return out, err
}

// DeleteBackup removes the catalog row and, best-effort, its archive
// file. A missing file is not an error: the row may already be "broken".
func (m *Manager) DeleteBackup(ctx context.Context, backupID int64) error {
	var filePath string
	err := m.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		b, err := s.FindBackupByID(ctx, backupID)
		if err != nil {
			return err
		}
		filePath = b.FilePath
		return s.DeleteBackup(ctx, backupID)
	})
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("file", filePath).Msg("backup: failed to remove archive file")
	}
	return nil
}

// RestoreBackup extracts backupID's archive over its server's working
// directory. Refuses while the server is running — the Lifecycle Engine
// owns start/stop; this package never signals a process itself.
func (m *Manager) RestoreBackup(ctx context.Context, backupID int64) error {
	var b models.Backup
	var server models.ManagedServer
	err := m.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		b, err = s.FindBackupByID(ctx, backupID)
		if err != nil {
			return err
		}
		server, err = s.FindServerByID(ctx, b.ServerID)
		return err
	})
	if err != nil {
		return err
	}

	if server.Running || m.registry.IsRunning(server.ID) {
		return apierr.Conflict("ServerRunning", "cannot restore a backup over a running server's working directory", nil)
	}
	if b.Broken {
		return apierr.NotFound("BackupFileMissing", "backup archive file no longer exists on disk")
	}

	if err := restoreArchive(b.FilePath, server.WorkingDir); err != nil {
		return apierr.Resource("RestoreFailed", "failed to extract backup archive", err)
	}
	return nil
}
