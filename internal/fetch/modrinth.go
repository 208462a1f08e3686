// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// modrinthAPIBase is the public Modrinth API root. Version metadata is
// resolved here, but the actual file bytes are downloaded from the CDN
// URL the metadata response points at, through the shared HTTPClient's
// digest-verified download path.
const modrinthAPIBase = "https://api.modrinth.com/v2"

// ModrinthFetcher resolves a project+version pair against the Modrinth
// API, then downloads and digest-verifies the resulting plugin jar.
type ModrinthFetcher struct {
	client   *HTTPClient
	metaHTTP *http.Client
}

// NewModrinthFetcher builds a fetcher rate-limited to be polite to the
// shared public API.
func NewModrinthFetcher() *ModrinthFetcher {
	return &ModrinthFetcher{
		client:   NewHTTPClient("modrinth", 4),
		metaHTTP: &http.Client{},
	}
}

type modrinthVersionFile struct {
	URL    string `json:"url"`
	Hashes struct {
		SHA1   string `json:"sha1"`
		SHA512 string `json:"sha512"`
	} `json:"hashes"`
	Primary bool `json:"primary"`
}

type modrinthVersion struct {
	Files []modrinthVersionFile `json:"files"`
}

// Fetch downloads an already-resolved spec through the shared
// digest-verified downloader. It does no Modrinth lookup itself: use
// ResolveVersion to pick the primary file (or the first file if none is
// marked primary) and build the Spec.
func (f *ModrinthFetcher) Fetch(ctx context.Context, spec Spec) (Result, error) {
	return f.client.Fetch(ctx, spec)
}

// ResolveVersion looks up the download URL and published digest for one
// Modrinth project version, for the caller (internal/api's plugin
// install handler) to pass into Fetch as a fully-resolved Spec.
func (f *ModrinthFetcher) ResolveVersion(ctx context.Context, projectID, versionID, destPath string) (Spec, error) {
	url := fmt.Sprintf("%s/project/%s/version/%s", modrinthAPIBase, projectID, versionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Spec{}, fmt.Errorf("fetch: modrinth: build request: %w", err)
	}

	resp, err := f.metaHTTP.Do(req)
	if err != nil {
		return Spec{}, fmt.Errorf("fetch: modrinth: version lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Spec{}, fmt.Errorf("fetch: modrinth: version lookup status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Spec{}, fmt.Errorf("fetch: modrinth: read version response: %w", err)
	}

	var v modrinthVersion
	if err := json.Unmarshal(body, &v); err != nil {
		return Spec{}, fmt.Errorf("fetch: modrinth: decode version response: %w", err)
	}

	file := primaryFile(v.Files)
	if file == nil {
		return Spec{}, fmt.Errorf("fetch: modrinth: version %s has no files", versionID)
	}

	return Spec{URL: file.URL, DestPath: destPath, SHA512: file.Hashes.SHA512}, nil
}

func primaryFile(files []modrinthVersionFile) *modrinthVersionFile {
	for i := range files {
		if files[i].Primary {
			return &files[i]
		}
	}
	if len(files) > 0 {
		return &files[0]
	}
	return nil
}
