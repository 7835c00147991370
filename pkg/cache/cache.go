// Package cache provides pluggable byte caches for computed layouts and
// rendered artifacts.
//
// Layout computation is cheap, but rendering (rasterization, Graphviz, PDF
// conversion) is not, and hosts that spiderfy the same anchors repeatedly
// benefit from reusing results. The package defines a minimal [Cache]
// interface with several backends:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON files under a directory, for CLI use
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [MongoCache]: document-store cache with a TTL index
//
// Cache keys are produced by a [Keyer] so that the same inputs always map to
// the same key regardless of backend. [ScopedKeyer] prefixes keys for tenant
// isolation.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(12, cache.LayoutKeyOpts{Params: params})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the cached bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry type.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
