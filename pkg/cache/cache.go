// Package cache provides byte caches for computed layouts and rendered
// artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//
// Use [Open] to pick one from [Options].
//
// # Keys
//
// A [Keyer] turns a content hash and options into a cache key. Keys embed
// a SHA-256 of their inputs, so any change to the member snapshot or the
// layout options yields a different key and stale entries simply expire.
// [ScopedKeyer] prefixes keys, for example with a tree name.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
