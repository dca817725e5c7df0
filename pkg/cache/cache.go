// Package cache stores precomputed index snapshots between runs.
//
// Building a bucket index is linear in the number of items; for large,
// rarely changing layouts the CLI and the HTTP server skip that pass by
// loading a snapshot keyed by the layout's content hash.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a cache directory (CLI default)
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are produced by a [Keyer] so that every caller derives the same key
// for the same inputs. [ScopedKeyer] namespaces keys, for example per
// configuration profile.
package cache

import (
	"context"
	"time"
)

// TTLSnapshot is how long an index snapshot stays cached.
const TTLSnapshot = 24 * time.Hour

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss with hit == false and a nil error; expired and
// corrupt entries are misses. A ttl of zero stores without expiration.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
