// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package models

// PluginSource identifies the upstream registry a Plugin was fetched from.
type PluginSource string

const (
	PluginSourceModrinth PluginSource = "modrinth"
	PluginSourceHangar   PluginSource = "hangar"
	PluginSourceURL      PluginSource = "url"
)

// Plugin is owned by its ManagedServer and removed when the server is
// deleted. Enable/disable is a file-rename operation against FilePath
// (".jar" <-> ".jar.disabled"); this record always follows the file, never
// the other way around.
type Plugin struct {
	ID               int64        `json:"id" db:"id"`
	ServerID         int64        `json:"server_id" db:"server_id"`
	Name             string       `json:"name" db:"name" validate:"required"`
	Source           PluginSource `json:"source" db:"source" validate:"required,oneof=modrinth hangar url"`
	SourceProjectID  string       `json:"source_project_id,omitempty" db:"source_project_id"`
	InstalledVersion string       `json:"installed_version" db:"installed_version"`
	FilePath         string       `json:"file_path" db:"file_path"`
	Enabled          bool         `json:"enabled" db:"enabled"`
}
