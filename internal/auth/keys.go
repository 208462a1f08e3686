// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/msmd/internal/apierr"
	"github.com/tomtom215/msmd/internal/models"
	"github.com/tomtom215/msmd/internal/store"
)

// prefixBytes and secretBytes size the two halves of an issued token. The
// prefix is not secret; it exists only to make lookup an indexed point
// query instead of a scan-and-compare over every active key.
const (
	prefixBytes = 4
	secretBytes = 24
)

// IssuedKey is returned once, at issuance time, and never again: the
// plain-text Token is not derivable from the persisted models.ApiKey.
type IssuedKey struct {
	Record models.ApiKey
	Token  string // "<prefix>.<secret>" — show this to the operator once
}

// Issue mints a new API key, persists its bcrypt hash via the given
// scope, and returns the one-time plain-text token.
func Issue(ctx context.Context, s *store.Scope, label string) (IssuedKey, error) {
	prefix, err := randomHex(prefixBytes)
	if err != nil {
		return IssuedKey{}, apierr.Resource("KeyGenerationFailed", "failed to generate api key prefix", err)
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return IssuedKey{}, apierr.Resource("KeyGenerationFailed", "failed to generate api key secret", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return IssuedKey{}, apierr.Resource("KeyHashFailed", "failed to hash api key secret", err)
	}

	record := models.ApiKey{Label: label, Prefix: prefix, Hash: string(hash), Active: true}
	id, err := s.InsertAPIKey(ctx, record)
	if err != nil {
		return IssuedKey{}, err
	}
	record.ID = id

	return IssuedKey{Record: record, Token: prefix + "." + secret}, nil
}

// Verify looks up the key named by token's prefix and compares its
// secret half against the persisted hash. A missing key, a revoked key,
// and a wrong secret are all indistinguishable failures to the caller —
// matching the spec's "compared with constant-time hash equality", which
// bcrypt.CompareHashAndPassword already provides for the secret itself.
func Verify(ctx context.Context, s *store.Scope, token string) (models.ApiKey, error) {
	prefix, secret, ok := splitToken(token)
	if !ok {
		return models.ApiKey{}, apierr.SecurityRefusal("InvalidApiKey", "malformed api key")
	}

	record, err := s.FindAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return models.ApiKey{}, apierr.SecurityRefusal("InvalidApiKey", "unknown api key")
	}
	if !record.Active {
		return models.ApiKey{}, apierr.SecurityRefusal("InvalidApiKey", "api key has been revoked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.Hash), []byte(secret)); err != nil {
		return models.ApiKey{}, apierr.SecurityRefusal("InvalidApiKey", "api key does not match")
	}
	return record, nil
}

func splitToken(token string) (prefix, secret string, ok bool) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
