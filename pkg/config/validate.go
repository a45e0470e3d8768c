package config

import (
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/layout"
)

// FormatArchive is the export format id of the image archive.
const FormatArchive = "zip"

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.Scryfall.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "scryfall.base_url")
	}
	if c.Scryfall.UserAgent == "" {
		return invalid("scryfall.user_agent must be set")
	}
	if c.Scryfall.MemoSize < 0 {
		return invalid("scryfall.memo_size must not be negative")
	}
	if c.Images.Quality < 1 || c.Images.Quality > 100 {
		return invalid("images.quality must be between 1 and 100")
	}
	for name, d := range map[string]Duration{
		"scryfall.request_delay": c.Scryfall.RequestDelay,
		"scryfall.timeout":       c.Scryfall.Timeout,
		"images.timeout":         c.Images.Timeout,
		"cache.ttl":              c.Cache.TTL,
		"cache.sets_ttl":         c.Cache.SetsTTL,
		"server.request_timeout": c.Server.RequestTimeout,
	} {
		if d.Duration < 0 {
			return invalid("%s must not be negative", name)
		}
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if c.Export.Format != FormatArchive {
		if _, err := layout.Lookup(c.Export.Format); err != nil {
			return err
		}
	}
	if c.Upload.Bucket == "" && (c.Upload.AccessKey != "" || c.Upload.Endpoint != "") {
		return invalid("upload.bucket is required when upload credentials or endpoint are set")
	}
	if c.Upload.Endpoint != "" {
		if err := errors.ValidateURL(c.Upload.Endpoint); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "upload.endpoint")
		}
	}
	if c.Server.Addr == "" {
		return invalid("server.addr must be set")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendMemory:
		if c.Cache.MemorySize <= 0 {
			return invalid("cache.memory_size must be positive")
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache.redis_url is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q (want file, memory, redis or none)", c.Cache.Backend)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}
