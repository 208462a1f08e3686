// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/platform"
	"github.com/tomtom215/msmd/internal/registry"
	"github.com/tomtom215/msmd/internal/store"
)

func TestRemoveWorkingDir_RefusesTraversalOutsideDataRoot(t *testing.T) {
	dataRoot := t.TempDir()
	outside := t.TempDir()

	e := &Engine{}
	err := e.removeWorkingDir(dataRoot, outside)
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindSecurityRefusal {
		t.Fatalf("expected security refusal, got %v", err)
	}
	if _, statErr := os.Stat(outside); statErr != nil {
		t.Fatalf("outside directory should not have been removed: %v", statErr)
	}
}

func TestRemoveWorkingDir_RemovesStrictDescendant(t *testing.T) {
	dataRoot := t.TempDir()
	workDir := filepath.Join(dataRoot, "servers", "survival")
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := &Engine{}
	if err := e.removeWorkingDir(dataRoot, workDir); err != nil {
		t.Fatalf("removeWorkingDir: %v", err)
	}
	if _, statErr := os.Stat(workDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected working directory to be removed, stat err = %v", statErr)
	}
}

func TestRemoveWorkingDir_DataRootItselfIsNotAStrictDescendant(t *testing.T) {
	dataRoot := t.TempDir()

	e := &Engine{}
	err := e.removeWorkingDir(dataRoot, dataRoot)
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindSecurityRefusal {
		t.Fatalf("expected security refusal for data root itself, got %v", err)
	}
}

// elevatedBackend is a platform.Backend stub that always reports running
// as an elevated principal; every other method is unused by Delete.
type elevatedBackend struct{}

func (elevatedBackend) Spawn(ctx context.Context, req platform.SpawnRequest) (*platform.Child, error) {
	return nil, nil
}
func (elevatedBackend) SignalGraceful(pid int) error { return nil }
func (elevatedBackend) SignalForce(pid int) error    { return nil }
func (elevatedBackend) IsAlive(pid int) bool         { return false }
func (elevatedBackend) ProcessStats(pid int) (float64, uint64, error) {
	return 0, 0, nil
}
func (elevatedBackend) DiscoverRuntimes(ctx context.Context) ([]platform.Runtime, error) {
	return nil, nil
}
func (elevatedBackend) FreePort(port int) (platform.PortCheck, error) {
	return platform.PortCheck{Free: true}, nil
}
func (elevatedBackend) DataRoot() (string, error) { return "", nil }
func (elevatedBackend) IsElevated() bool          { return true }

// TestDelete_ElevatedRefusalLeavesRecordIntact checks that a
// delete(keep-files=false) that trips the elevated guard raises a
// security refusal and removes nothing, including the catalog record
// itself.
func TestDelete_ElevatedRefusalLeavesRecordIntact(t *testing.T) {
	gw, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer gw.Close()

	dataRoot := t.TempDir()
	workDir := filepath.Join(dataRoot, "servers", "survival")
	if mkErr := os.MkdirAll(workDir, 0o750); mkErr != nil {
		t.Fatalf("mkdir: %v", mkErr)
	}

	var serverID int64
	err = gw.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		var insertErr error
		serverID, insertErr = s.InsertServer(ctx, models.ManagedServer{
			Name:         "survival",
			Distribution: models.DistributionPaper,
			Version:      "1.21",
			WorkingDir:   workDir,
			Port:         25565,
			HeapSize:     "2G",
		})
		return insertErr
	})
	if err != nil {
		t.Fatalf("InsertServer: %v", err)
	}

	e := &Engine{gateway: gw, backend: elevatedBackend{}, registry: registry.New()}

	err = e.Delete(context.Background(), dataRoot, serverID, false)
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindSecurityRefusal {
		t.Fatalf("expected security refusal, got %v", err)
	}

	err = gw.WithScope(context.Background(), func(ctx context.Context, s *store.Scope) error {
		_, findErr := s.FindServerByID(ctx, serverID)
		return findErr
	})
	if err != nil {
		t.Fatalf("expected catalog record to survive refused delete, FindServerByID failed: %v", err)
	}
	if _, statErr := os.Stat(workDir); statErr != nil {
		t.Fatalf("expected working directory to survive refused delete: %v", statErr)
	}
}
