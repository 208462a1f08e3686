// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/msmd/internal/apierr"
)

func TestDiscoverImportedJar_PrefersServerJar(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "server.jar"), "x")
	mustWriteFile(t, filepath.Join(dir, "other.jar"), "xxxxxxxxxx")

	got, err := discoverImportedJar(dir)
	if err != nil {
		t.Fatalf("discoverImportedJar: %v", err)
	}
	if got != "server.jar" {
		t.Fatalf("got %q, want server.jar", got)
	}
}

func TestDiscoverImportedJar_FallsBackToLargest(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "small.jar"), "x")
	mustWriteFile(t, filepath.Join(dir, "big.jar"), "xxxxxxxxxxxxxxxxxxxx")

	got, err := discoverImportedJar(dir)
	if err != nil {
		t.Fatalf("discoverImportedJar: %v", err)
	}
	if got != "big.jar" {
		t.Fatalf("got %q, want big.jar", got)
	}
}

func TestDiscoverImportedJar_NoJarsIsValidationError(t *testing.T) {
	dir := t.TempDir()

	_, err := discoverImportedJar(dir)
	if kind, ok := apierr.KindOf(err); !ok || kind != apierr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckEULA(t *testing.T) {
	dir := t.TempDir()
	if err := checkEULA(dir); err == nil {
		t.Fatal("expected error for missing eula.txt")
	}

	mustWriteFile(t, eulaPath(dir), "#generated\neula=false\n")
	if err := checkEULA(dir); err == nil {
		t.Fatal("expected error for unaccepted eula")
	}

	mustWriteFile(t, eulaPath(dir), "#generated\neula=true\n")
	if err := checkEULA(dir); err != nil {
		t.Fatalf("expected accepted eula to pass, got %v", err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
