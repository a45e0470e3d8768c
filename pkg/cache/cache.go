// Package cache provides byte-level caching for catalog responses and
// downloaded card images.
//
// Four backends implement [Cache]:
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: JSON envelopes on disk, the CLI default
//   - [MemoryCache]: a bounded in-process LRU, used by the HTTP server
//   - [RedisCache]: shared cache for several server replicas
//
// Keys are built by a [Keyer] so that every backend sees the same key space.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Get reports (data, true, nil) on a hit and (nil, false, nil) on a miss;
// an error is returned only when the backend itself failed. A ttl of zero
// stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys for the different kinds of cached data.
type Keyer interface {
	// HTTPKey generates a key for a catalog API response.
	HTTPKey(namespace, key string) string

	// ImageKey generates a key for downloaded image bytes.
	ImageKey(ref string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ImageKey hashes the reference so long URLs produce short keys.
func (DefaultKeyer) ImageKey(ref string) string {
	return hashKey("image", ref)
}
