// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/fetch"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// ListPlugins handles GET /api/v1/servers/{serverID}/plugins.
func (h *Handler) ListPlugins(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var plugins []models.Plugin
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		plugins, err = s.ListPluginsForServer(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(plugins)
}

// installPluginRequest describes a plugin to fetch and install. Exactly
// the fields relevant to Source are consulted.
type installPluginRequest struct {
	Name   string              `json:"name" validate:"required"`
	Source models.PluginSource `json:"source" validate:"required,oneof=modrinth hangar url"`

	// modrinth
	ProjectID string `json:"project_id,omitempty"`
	VersionID string `json:"version_id,omitempty"`

	// hangar
	Slug     string `json:"slug,omitempty"`
	Version  string `json:"version,omitempty"`
	Platform string `json:"platform,omitempty"`

	// url
	URL string `json:"url,omitempty"`
}

// InstallPlugin handles POST /api/v1/servers/{serverID}/plugins: resolves
// and downloads a jar from the requested registry into the server's
// working directory's plugins subdirectory, then records the catalog
// row.
func (h *Handler) InstallPlugin(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	serverID, ok := idParam(w, r, "serverID")
	if !ok {
		return
	}

	var req installPluginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var server models.ManagedServer
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		var err error
		server, err = s.FindServerByID(ctx, serverID)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}

	destPath := filepath.Join(server.WorkingDir, "plugins", req.Name+".jar")

	var client fetch.Client
	var spec fetch.Spec
	switch req.Source {
	case models.PluginSourceModrinth:
		if req.ProjectID == "" || req.VersionID == "" {
			rw.BadRequest("MissingField", "project_id and version_id are required for a modrinth install", nil)
			return
		}
		spec, err = h.modrinth.ResolveVersion(r.Context(), req.ProjectID, req.VersionID, destPath)
		client = h.modrinth
	case models.PluginSourceHangar:
		if req.Slug == "" || req.Version == "" {
			rw.BadRequest("MissingField", "slug and version are required for a hangar install", nil)
			return
		}
		platform := req.Platform
		if platform == "" {
			platform = "PAPER"
		}
		spec = h.hangar.ResolveVersion(r.Context(), req.Slug, req.Version, platform, destPath)
		client = h.hangar
	case models.PluginSourceURL:
		if req.URL == "" {
			rw.BadRequest("MissingField", "url is required for a direct-url install", nil)
			return
		}
		spec = fetch.Spec{URL: req.URL, DestPath: destPath}
		client = h.url
	}
	if err != nil {
		rw.Error(apierr.Resource("PluginResolveFailed", "failed to resolve plugin version", err))
		return
	}

	if _, err := client.Fetch(r.Context(), spec); err != nil {
		rw.Error(apierr.Resource("PluginDownloadFailed", "failed to download plugin jar", err))
		return
	}

	var installed models.Plugin
	err = h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		id, err := s.InsertPlugin(ctx, models.Plugin{
			ServerID:        serverID,
			Name:            req.Name,
			Source:          req.Source,
			SourceProjectID: req.ProjectID,
			FilePath:        destPath,
			Enabled:         true,
		})
		if err != nil {
			return err
		}
		installed, err = s.FindPluginByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(installed)
}

// pluginEnabledPatch toggles a plugin between "<name>.jar" and
// "<name>.jar.disabled" on disk, the file-rename enable/disable scheme
// models.Plugin documents.
type pluginEnabledPatch struct {
	Enabled bool `json:"enabled"`
}

// SetPluginEnabled handles PATCH /api/v1/plugins/{pluginID}.
func (h *Handler) SetPluginEnabled(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "pluginID")
	if !ok {
		return
	}

	var patch pluginEnabledPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	var updated models.Plugin
	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		plugin, err := s.FindPluginByID(ctx, id)
		if err != nil {
			return err
		}
		if plugin.Enabled == patch.Enabled {
			updated = plugin
			return nil
		}

		newPath := togglePluginPath(plugin.FilePath, patch.Enabled)
		if err := renamePluginFile(plugin.FilePath, newPath); err != nil {
			return apierr.Resource("PluginToggleFailed", "failed to rename plugin jar", err)
		}
		if err := s.SetPluginEnabled(ctx, id, patch.Enabled, newPath); err != nil {
			return err
		}
		updated, err = s.FindPluginByID(ctx, id)
		return err
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(updated)
}

// DeletePlugin handles DELETE /api/v1/plugins/{pluginID}.
func (h *Handler) DeletePlugin(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(w, r, "pluginID")
	if !ok {
		return
	}

	err := h.gateway.WithScope(r.Context(), func(ctx context.Context, s *store.Scope) error {
		plugin, err := s.FindPluginByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.DeletePlugin(ctx, id); err != nil {
			return err
		}
		removePluginFile(plugin.FilePath)
		return nil
	})
	if err != nil {
		rw.Error(err)
		return
	}
	rw.NoContent()
}
