// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package fetch is the External Fetchers (C8): download-and-verify
// clients for the three upstream registry families the Lifecycle Engine
// and Scheduler need artifacts from — game-distribution JARs (Paper,
// Vanilla, Fabric, Purpur, Forge), plugin registries (Modrinth, Hangar),
// and arbitrary direct URLs. Every fetcher shares one template: download
// to a temporary `<target>.part` file, fsync, verify a cryptographic
// digest if the registry published one, then rename into place — so a
// caller never observes a partial or unverified artifact at its final
// path.
package fetch

import "context"

// Spec describes one artifact to download.
type Spec struct {
	// URL is the fully resolved download location.
	URL string
	// DestPath is the final on-disk path. The client writes to
	// DestPath+".part" first and renames atomically on success.
	DestPath string
	// SHA256/SHA512 are the expected digests, hex-encoded, as published
	// by the source registry. At most one needs to be set; both empty
	// means the registry did not publish a digest and none is verified.
	SHA256 string
	SHA512 string
}

// Result is the outcome of a verified download.
type Result struct {
	Path           string
	VerifiedDigest string // hex-encoded digest actually computed, empty if none was checked
	Bytes          int64
}

// Client is satisfied by every concrete fetcher (Modrinth, Hangar, plain
// URL). Callers in internal/lifecycle and internal/schedule depend only
// on this interface.
type Client interface {
	Fetch(ctx context.Context, spec Spec) (Result, error)
}
