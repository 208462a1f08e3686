// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/msmd/internal/logging"
	"github.com/tomtom215/msmd/internal/metrics"
)

const runtimeCacheKey = "discover-runtimes:v1"

// CachedDiscoverer wraps a Backend's DiscoverRuntimes with a small embedded
// badger instance so a `GET /java` call doesn't re-invoke `java -version`
// against every candidate on every request. Entries expire after ttl
// (default 5 minutes); callers needing a fresh scan can call Invalidate.
type CachedDiscoverer struct {
	backend Backend
	db      *badger.DB
	ttl     time.Duration
}

// NewCachedDiscoverer opens (or creates) the badger cache rooted at
// <dataRoot>/runtimes/.cache.badger.
func NewCachedDiscoverer(backend Backend, dataRoot string, ttl time.Duration) (*CachedDiscoverer, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	dir := filepath.Join(dataRoot, "runtimes", ".cache.badger")
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("platform: open runtime cache: %w", err)
	}
	return &CachedDiscoverer{backend: backend, db: db, ttl: ttl}, nil
}

// Close releases the underlying badger database.
func (c *CachedDiscoverer) Close() error {
	return c.db.Close()
}

// DiscoverRuntimes returns the cached scan if present and unexpired,
// otherwise performs a fresh scan via the wrapped Backend and caches it.
func (c *CachedDiscoverer) DiscoverRuntimes(ctx context.Context) ([]Runtime, error) {
	if cached, ok := c.readCache(); ok {
		metrics.RecordRuntimeCacheHit()
		return cached, nil
	}
	metrics.RecordRuntimeCacheMiss()

	runtimes, err := c.backend.DiscoverRuntimes(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.writeCache(runtimes); err != nil {
		logging.Warn().Err(err).Msg("platform: failed to cache runtime discovery result")
	}
	return runtimes, nil
}

// Invalidate drops the cached scan, forcing the next DiscoverRuntimes call
// to re-probe every candidate.
func (c *CachedDiscoverer) Invalidate() error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(runtimeCacheKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (c *CachedDiscoverer) readCache() ([]Runtime, bool) {
	var runtimes []Runtime
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runtimeCacheKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &runtimes)
		})
	})
	if err != nil {
		return nil, false
	}
	return runtimes, true
}

func (c *CachedDiscoverer) writeCache(runtimes []Runtime) error {
	data, err := json.Marshal(runtimes)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(runtimeCacheKey), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}
