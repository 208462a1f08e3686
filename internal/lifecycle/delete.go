// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

var deleteSecurityLog = logging.NewSecurityLogger()

// Delete removes serverID's catalog record, refusing while it is
// running. When keepFiles is false, the working directory is also
// removed, but only after two mandatory guards — the supervisor must
// not be running as an elevated principal, and the directory's
// symlink-resolved canonical path must be a strict descendant of
// dataRoot (anti path-traversal) — and both guards must pass before the
// catalog record is deleted: a refusal from either must leave the
// record (and the files) untouched.
func (e *Engine) Delete(ctx context.Context, dataRoot string, serverID int64, keepFiles bool) error {
	var server models.ManagedServer
	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var findErr error
		server, findErr = s.FindServerByID(ctx, serverID)
		if findErr != nil {
			return findErr
		}
		if server.Running || e.registry.IsRunning(serverID) {
			return apierr.Conflict("ServerRunning", "cannot delete a running server", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var canonicalWorkDir string
	if !keepFiles {
		if e.backend.IsElevated() {
			deleteSecurityLog.LogElevatedDeleteRefused(serverID, server.WorkingDir)
			return apierr.SecurityRefusal("ElevatedDelete", "refusing filesystem deletion while running as root/administrator")
		}
		canonicalWorkDir, err = e.resolveWorkingDirForDelete(dataRoot, server.WorkingDir)
		if err != nil {
			if kind, ok := apierr.KindOf(err); ok && kind == apierr.KindSecurityRefusal {
				deleteSecurityLog.LogPathTraversalRefused(serverID, server.WorkingDir)
			}
			return err
		}
	}

	if err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		return s.DeleteServer(ctx, serverID)
	}); err != nil {
		return err
	}

	if canonicalWorkDir == "" {
		return nil
	}
	if err := os.RemoveAll(canonicalWorkDir); err != nil {
		return apierr.Resource("DeleteFailed", "failed to remove working directory", err)
	}
	return nil
}

// resolveWorkingDirForDelete resolves workingDir's canonical, symlink-free
// path and verifies it is a strict descendant of dataRoot, without
// removing anything. It returns ("", nil) if workingDir no longer
// resolves — there is nothing left to remove — and a SecurityRefusal if
// the canonical path escapes dataRoot.
func (e *Engine) resolveWorkingDirForDelete(dataRoot, workingDir string) (string, error) {
	canonicalRoot, err := filepath.EvalSymlinks(dataRoot)
	if err != nil {
		return "", apierr.Resource("DataRootUnresolvable", "failed to resolve data root", err)
	}

	canonical, err := filepath.EvalSymlinks(workingDir)
	if err != nil {
		// Nothing left to remove.
		return "", nil
	}

	rel, err := filepath.Rel(canonicalRoot, canonical)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", apierr.SecurityRefusal("PathTraversal", "working directory is not a descendant of the data root")
	}

	return canonical, nil
}

// removeWorkingDir resolves and validates workingDir against dataRoot,
// then removes it. It exists as a thin wrapper around
// resolveWorkingDirForDelete for callers (and tests) that want the
// check-then-remove behavior as a single call.
func (e *Engine) removeWorkingDir(dataRoot, workingDir string) error {
	canonical, err := e.resolveWorkingDirForDelete(dataRoot, workingDir)
	if err != nil || canonical == "" {
		return err
	}
	if err := os.RemoveAll(canonical); err != nil {
		return apierr.Resource("DeleteFailed", "failed to remove working directory", err)
	}
	return nil
}
