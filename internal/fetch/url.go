// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import "context"

// URLFetcher fetches an artifact from an arbitrary, already-resolved
// URL. It is the simplest of the three registry clients and is also the
// one the game-distribution JAR resolvers (see jar.go) delegate their
// actual transfer to, once they have worked out what URL to hit.
type URLFetcher struct {
	client *HTTPClient
}

// NewURLFetcher builds a fetcher with no per-host rate limit, suitable
// for one-off direct-URL plugin installs.
func NewURLFetcher() *URLFetcher {
	return &URLFetcher{client: NewHTTPClient("url", 0)}
}

func (f *URLFetcher) Fetch(ctx context.Context, spec Spec) (Result, error) {
	return f.client.Fetch(ctx, spec)
}
