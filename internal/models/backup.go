// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package models

import "time"

// BackupKind identifies why a backup was created.
type BackupKind string

const (
	BackupKindManual    BackupKind = "manual"
	BackupKindScheduled BackupKind = "scheduled"
	BackupKindPreUpdate BackupKind = "pre-update"
)

// BackupStatus tracks the lifecycle of one backup archive.
type BackupStatus string

const (
	BackupStatusInProgress BackupStatus = "in-progress"
	BackupStatusCompleted  BackupStatus = "completed"
	BackupStatusFailed     BackupStatus = "failed"
)

// Backup is a catalog entry for one gzip-compressed tar archive of a
// server's working directory. The archive on disk is the source of truth;
// this record is a weak, non-cascading reference to it — deleting the
// ManagedServer never deletes its Backup rows or files.
type Backup struct {
	ID       int64        `json:"id" db:"id"`
	ServerID int64        `json:"server_id" db:"server_id"`
	FilePath string       `json:"file_path" db:"file_path"`
	SizeBytes int64       `json:"size_bytes" db:"size_bytes"`
	Kind     BackupKind   `json:"kind" db:"kind"`
	Status   BackupStatus `json:"status" db:"status"`

	// Broken is derived, not stored: it is set by the store when the
	// archive file referenced by FilePath no longer exists on disk.
	Broken bool `json:"broken,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
