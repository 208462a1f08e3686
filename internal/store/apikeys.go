// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package store

import (
	"context"
	"fmt"

	"github.com/tomtom215/msmd/internal/models"
)

const apiKeyColumns = `id, label, prefix, hash, active`

func scanAPIKey(row interface{ Scan(...any) error }) (models.ApiKey, error) {
	var k models.ApiKey
	err := row.Scan(&k.ID, &k.Label, &k.Prefix, &k.Hash, &k.Active)
	if err != nil {
		return models.ApiKey{}, err
	}
	return k, nil
}

// FindAPIKeyByPrefix looks up an issued key by its short public prefix,
// the first step of the constant-time verification flow in internal/auth.
func (s *Scope) FindAPIKeyByPrefix(ctx context.Context, prefix string) (models.ApiKey, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE prefix = ?`, prefix)
	k, err := scanAPIKey(row)
	if err != nil {
		return models.ApiKey{}, notFound("ApiKeyNotFound", fmt.Sprintf("api key with prefix %q not found", prefix), err)
	}
	return k, nil
}

// ListAPIKeys returns every issued key (hashes included; never the raw
// secret, which is never stored).
func (s *Scope) ListAPIKeys(ctx context.Context) ([]models.ApiKey, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list api keys: %w", err)
	}
	defer rows.Close()

	var out []models.ApiKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// InsertAPIKey stores a newly-issued key's prefix and hash.
func (s *Scope) InsertAPIKey(ctx context.Context, k models.ApiKey) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO api_keys (label, prefix, hash, active)
		VALUES (?, ?, ?, true)
		RETURNING id
	`, k.Label, k.Prefix, k.Hash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert api key: %w", err)
	}
	return id, nil
}

// RevokeAPIKey marks a key inactive; it is kept in the catalog for audit
// purposes rather than deleted.
func (s *Scope) RevokeAPIKey(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE api_keys SET active = false WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: revoke api key: %w", err)
	}
	return nil
}
