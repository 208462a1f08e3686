// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import (
	"context"
	"fmt"
)

// hangarAPIBase is the public Hangar (PaperMC's plugin registry) API
// root. Hangar's download endpoint serves bytes directly (no separate
// metadata+CDN indirection like Modrinth), so ResolveVersion here only
// has to compose the URL — verification still goes through the shared
// digest-checked downloader.
const hangarAPIBase = "https://hangar.papermc.io/api/v1"

// HangarFetcher downloads a plugin jar published on Hangar.
type HangarFetcher struct {
	client *HTTPClient
}

// NewHangarFetcher builds a fetcher rate-limited to be polite to the
// shared public API.
func NewHangarFetcher() *HangarFetcher {
	return &HangarFetcher{client: NewHTTPClient("hangar", 4)}
}

func (f *HangarFetcher) Fetch(ctx context.Context, spec Spec) (Result, error) {
	return f.client.Fetch(ctx, spec)
}

// ResolveVersion composes the download URL for one Hangar
// project/version/platform triple. Hangar does not publish a
// machine-readable digest on this endpoint, so the resulting Spec has no
// SHA256/SHA512 set — the caller proceeds with an unverified but
// atomically-written download, exactly as an "opaque fetch-and-verify
// client" degrades when its registry publishes no digest.
func (f *HangarFetcher) ResolveVersion(_ context.Context, slug, version, platform, destPath string) Spec {
	url := fmt.Sprintf("%s/projects/%s/versions/%s/%s/download", hangarAPIBase, slug, version, platform)
	return Spec{URL: url, DestPath: destPath}
}
