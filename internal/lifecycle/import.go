// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package lifecycle

import (
	"context"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
	"github.com/tomtom215/msmd/internal/validation"
)

// Import points a new catalog record at an existing working directory
// instead of allocating one. It requires server.jar, or failing that a
// jar carrying a Main-Class manifest entry, or failing that the largest
// jar present — see discoverImportedJar.
//
// spec.Name is validated against the same servername pattern Create
// enforces, since the name is still used elsewhere (e.g. API routes,
// log labels) as if it were path-safe.
func (e *Engine) Import(ctx context.Context, spec models.ImportServerSpec) (models.ManagedServer, error) {
	if verr := validation.ValidateStruct(&spec); verr != nil {
		apiErr := verr.ToAPIError()
		return models.ManagedServer{}, apierr.Validation(apiErr.Code, apiErr.Message, apiErr.Details)
	}

	jarName, err := discoverImportedJar(spec.WorkingDir)
	if err != nil {
		return models.ManagedServer{}, err
	}

	var id int64
	err = e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		if _, findErr := s.FindServerByName(ctx, spec.Name); findErr == nil {
			return apierr.ErrNameInUse
		}

		server := models.ManagedServer{
			Name:         spec.Name,
			Distribution: spec.Distribution,
			Version:      spec.Version,
			WorkingDir:   spec.WorkingDir,
			JarName:      jarName,
			Port:         spec.Port,
			HeapSize:     spec.HeapSize,
			RuntimePath:  spec.RuntimePath,
		}
		var insertErr error
		id, insertErr = s.InsertServer(ctx, server)
		return insertErr
	})
	if err != nil {
		return models.ManagedServer{}, err
	}

	var server models.ManagedServer
	err = e.gateway.WithScope(ctx, func(ctx context.Context, s *store.Scope) error {
		var findErr error
		server, findErr = s.FindServerByID(ctx, id)
		return findErr
	})
	return server, err
}
