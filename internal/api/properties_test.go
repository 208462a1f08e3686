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

func TestPropertiesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")

	if err := writeProperties(path, map[string]string{"max-players": "20", "motd": "hello"}); err != nil {
		t.Fatalf("writeProperties: %v", err)
	}

	got, err := readProperties(path)
	if err != nil {
		t.Fatalf("readProperties: %v", err)
	}
	if got["max-players"] != "20" || got["motd"] != "hello" {
		t.Fatalf("got %#v", got)
	}
}

func TestReadPropertiesMissingFile(t *testing.T) {
	props, err := readProperties(filepath.Join(t.TempDir(), "missing.properties"))
	if err != nil {
		t.Fatalf("readProperties: %v", err)
	}
	if len(props) != 0 {
		t.Fatalf("expected empty map, got %#v", props)
	}
}

func TestReadPropertiesSkipsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	content := "#Minecraft server properties\n! also a comment\nlevel-name=world\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	props, err := readProperties(path)
	if err != nil {
		t.Fatalf("readProperties: %v", err)
	}
	if len(props) != 1 || props["level-name"] != "world" {
		t.Fatalf("got %#v", props)
	}
}
