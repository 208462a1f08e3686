// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package backup archives and restores one ManagedServer's
// working-directory subtree as a gzip-compressed tar, named
// "<name>_<YYYYMMDD_HHMMSS>.tar.gz" per the spec's backup archive
// format, with a top-level entry equal to the server name.
//
// It is grounded on the teacher's archive writer (formerly
// internal/backup/manager_archive.go, since retargeted): the same
// tar.Writer-over-gzip.Writer construction, without a checksum (no
// digest of the archive is computed or stored), moved from "the
// application's own database and config" to "one server's working
// directory", and from the teacher's internal cron scheduler to
// internal/schedule's Dispatcher, which is now the only thing that
// decides when a scheduled backup fires — this package exposes
// CreateBackup and nothing that competes with it for that decision.
package backup
