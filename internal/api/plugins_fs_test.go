// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTogglePluginPath(t *testing.T) {
	cases := []struct {
		current string
		enabled bool
		want    string
	}{
		{"/data/plugins/foo.jar", false, "/data/plugins/foo.jar.disabled"},
		{"/data/plugins/foo.jar.disabled", true, "/data/plugins/foo.jar"},
		{"/data/plugins/foo.jar", true, "/data/plugins/foo.jar"},
	}
	for _, c := range cases {
		if got := togglePluginPath(c.current, c.enabled); got != c.want {
			t.Errorf("togglePluginPath(%q, %v) = %q, want %q", c.current, c.enabled, got, c.want)
		}
	}
}

func TestRenamePluginFile(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "foo.jar")
	newPath := oldPath + ".disabled"
	if err := os.WriteFile(oldPath, []byte("jar"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := renamePluginFile(oldPath, newPath); err != nil {
		t.Fatalf("renamePluginFile: %v", err)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("expected renamed file at %s: %v", newPath, err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old path gone, err=%v", err)
	}
}

func TestRemovePluginFileMissingIsSilent(t *testing.T) {
	removePluginFile(filepath.Join(t.TempDir(), "absent.jar"))
}
