// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
	"github.com/tomtom215/msmd/internal/validation"
)

// Create allocates a fresh working directory under
// dataRoot/servers/<name>/, fetches the server jar via the Lifecycle
// Engine's configured fetcher (C8), and inserts the catalog record.
//
// spec.Name is validated against the servername pattern before it is
// used to build workDir: an unvalidated name (e.g. "../../tmp/evil")
// would otherwise let Create escape dataRoot.
func (e *Engine) Create(ctx context.Context, dataRoot string, spec models.CreateServerSpec) (models.ManagedServer, error) {
	if verr := validation.ValidateStruct(&spec); verr != nil {
		apiErr := verr.ToAPIError()
		return models.ManagedServer{}, apierr.Validation(apiErr.Code, apiErr.Message, apiErr.Details)
	}

	workDir := filepath.Join(dataRoot, "servers", spec.Name)

	var id int64
	err := e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		if _, findErr := s.FindServerByName(ctx, spec.Name); findErr == nil {
			return apierr.ErrNameInUse
		}

		server := models.ManagedServer{
			Name:         spec.Name,
			Distribution: spec.Distribution,
			Version:      spec.Version,
			WorkingDir:   workDir,
			JarName:      defaultJarName,
			Port:         spec.Port,
			HeapSize:     spec.HeapSize,
			RuntimePath:  spec.RuntimePath,
			RuntimeArgs:  spec.RuntimeArgs,
		}
		var insertErr error
		id, insertErr = s.InsertServer(ctx, server)
		return insertErr
	})
	if err != nil {
		return models.ManagedServer{}, err
	}

	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return models.ManagedServer{}, apierr.Resource("WorkingDirFailed", "failed to create working directory", err)
	}

	if e.jars != nil {
		jarPath := filepath.Join(workDir, defaultJarName)
		if _, fetchErr := e.jars.Resolve(ctx, spec.Distribution, spec.Version, jarPath); fetchErr != nil {
			return models.ManagedServer{}, apierr.Resource("JarFetchFailed", "failed to fetch server jar", fetchErr)
		}
	}

	var server models.ManagedServer
	err = e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var findErr error
		server, findErr = s.FindServerByID(ctx, id)
		return findErr
	})
	return server, err
}
