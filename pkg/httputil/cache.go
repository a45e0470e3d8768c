package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL).
//
// The data is still on disk; callers may use it as a fallback when a fresh
// fetch fails.
var ErrExpired = errors.New("cache entry expired")

// lockName is the lock file shared by every Cache rooted in the same directory.
const lockName = ".lock"

// Cache provides file-based caching of arbitrary JSON-marshalable data.
//
// Each entry is stored as a JSON file whose name is the SHA-256 of the key.
// Reads take a shared flock on the directory's lock file and writes take an
// exclusive one, so a CLI run and a long-lived server can share the directory.
//
// Entries expire based on file modification time. A TTL of 0 means entries
// never expire.
//
// Use [Cache.Namespace] to create scoped views that prefix keys:
//
//	sets := cache.Namespace("sets:")
//	sets.Set("all", catalog) // key becomes "sets:all"
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
	lock   *flock.Flock
	now    func() time.Time
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
// The directory is created with mode 0755 if it doesn't exist.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:  dir,
		ttl:  ttl,
		lock: flock.New(filepath.Join(dir, lockName)),
		now:  time.Now,
	}, nil
}

// Dir returns the path to the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live duration for cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves a cached value by key and unmarshals it into v.
//
// Return values:
//   - (true, nil): hit, v is populated
//   - (false, nil): miss, v is unchanged
//   - (true, ErrExpired): stale entry, v is populated with the stale value
//   - (false, other error): I/O or decode failure
func (c *Cache) Get(key string, v any) (bool, error) {
	if err := c.lock.RLock(); err != nil {
		return false, err
	}
	defer c.lock.Unlock()

	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return true, ErrExpired
	}
	return true, nil
}

// Set stores a value in the cache under the given key, resetting its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.lock.Lock(); err != nil {
		return err
	}
	defer c.lock.Unlock()

	path := c.keyPath(c.prefix + key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes the entry for key. Missing entries are not an error.
func (c *Cache) Delete(key string) error {
	if err := c.lock.Lock(); err != nil {
		return err
	}
	defer c.lock.Unlock()

	err := os.Remove(c.keyPath(c.prefix + key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Namespace returns a new Cache that automatically prefixes all keys with prefix.
// The returned Cache shares the directory, TTL and lock of the parent.
// Namespace calls can be chained.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
		lock:   c.lock,
		now:    c.now,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
