// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"fmt"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
)

// resolveRuntime returns the java binary to launch server with: the
// server's own pinned RuntimePath if set, else the first runtime
// DiscoverRuntimes reports.
func (e *Engine) resolveRuntime(ctx context.Context, server models.ManagedServer) (string, error) {
	if server.RuntimePath != "" {
		return server.RuntimePath, nil
	}

	runtimes, err := e.backend.DiscoverRuntimes(ctx)
	if err != nil {
		return "", apierr.Resource("RuntimeDiscoveryFailed", "failed to discover a java runtime", err)
	}
	if len(runtimes) == 0 {
		return "", apierr.Validation("NoRuntimeFound", "no java runtime found and none configured on the server", nil)
	}
	return runtimes[0].Path, nil
}

// composeArgv builds the argument vector
// [runtime-path, -Xmx<memory>, -Xms<memory>, extra-jvm-args..., -jar, jar-name, nogui].
func composeArgv(runtimePath string, server models.ManagedServer) []string {
	jarName := server.JarName
	if jarName == "" {
		jarName = defaultJarName
	}

	argv := make([]string, 0, 6+len(server.RuntimeArgs))
	argv = append(argv, runtimePath)
	argv = append(argv, fmt.Sprintf("-Xmx%s", server.HeapSize))
	argv = append(argv, fmt.Sprintf("-Xms%s", server.HeapSize))
	argv = append(argv, server.RuntimeArgs...)
	argv = append(argv, "-jar", jarName, "nogui")
	return argv
}
