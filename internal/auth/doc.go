// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package auth implements the spec's single-secret API-key model: an
// issued key is "<prefix>.<secret>", only its bcrypt hash is ever
// persisted, and the prefix exists purely to make lookup an indexed
// point query instead of a hash scan over every active key. It is a
// deliberate simplification of the teacher's multi-authenticator stack
// (JWT/OIDC/Plex/Zitadel/Basic in _examples/tomtom215-cartographus's
// internal/auth) down to the one method the spec's Non-goals leave in
// scope: "multi-tenant authorization beyond single-secret API-key
// checks" is explicitly out.
package auth
