// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"os"
	"strings"

	"github.com/tomtom215/msmd/internal/logging"
)

const disabledSuffix = ".disabled"

// togglePluginPath computes the on-disk path a plugin jar should have
// after an enable/disable toggle, per models.Plugin's documented
// "<name>.jar" <-> "<name>.jar.disabled" rename scheme.
func togglePluginPath(current string, enabled bool) string {
	trimmed := strings.TrimSuffix(current, disabledSuffix)
	if enabled {
		return trimmed
	}
	return trimmed + disabledSuffix
}

func renamePluginFile(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}
	return os.Rename(oldPath, newPath)
}

func removePluginFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("file", path).Msg("api: failed to remove plugin jar")
	}
}
