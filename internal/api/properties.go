// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// readProperties parses a Java .properties file's "key=value" lines,
// preserving neither comments nor ordering — callers only need the map.
func readProperties(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	props := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

// writeProperties rewrites a server.properties file from scratch, keys
// sorted for a stable diff between edits.
func writeProperties(path string, props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(props[k])
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (h *Handler) propertiesPath(ctx context.Context, serverID int64) (string, models.ManagedServer, error) {
	var server models.ManagedServer
	err := h.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, serverID)
		return err
	})
	if err != nil {
		return "", models.ManagedServer{}, err
	}
	return filepath.Join(server.WorkingDir, "server.properties"), server, nil
}

// GetProperties handles GET /api/v1/servers/{serverID}/properties.
func (h *Handler) GetProperties(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	path, _, err := h.propertiesPath(r.Context(), id)
	if err != nil {
		rw.Error(err)
		return
	}

	props, err := readProperties(path)
	if err != nil {
		rw.Error(apierr.Resource("PropertiesReadFailed", "failed to read server.properties", err))
		return
	}
	rw.Success(props)
}

// PutProperties handles PUT /api/v1/servers/{serverID}/properties: a full
// replace of the file's key/value set, not a merge.
func (h *Handler) PutProperties(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var props map[string]string
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&props); err != nil {
		rw.BadRequest("INVALID_JSON", "request body is not valid JSON", map[string]string{"error": err.Error()})
		return
	}

	path, server, err := h.propertiesPath(r.Context(), id)
	if err != nil {
		rw.Error(err)
		return
	}
	if server.Running {
		rw.Error(apierr.Conflict("ServerRunning", "stop the server before editing server.properties", nil))
		return
	}

	if err := writeProperties(path, props); err != nil {
		rw.Error(apierr.Resource("PropertiesWriteFailed", "failed to write server.properties", err))
		return
	}
	rw.Success(props)
}
