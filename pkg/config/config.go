// Package config loads decksmith settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/decksmith/config.toml (falling back to
// ~/.config/decksmith/config.toml). Every key is optional: values present in
// the file override [Default].
//
//	[scryfall]
//	request_delay = "100ms"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/sink"
)

const appName = "decksmith"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the complete set of settings.
type Config struct {
	Scryfall Scryfall `toml:"scryfall"`
	Images   Images   `toml:"images"`
	Cache    Cache    `toml:"cache"`
	Export   Export   `toml:"export"`
	Upload   Upload   `toml:"upload"`
	Server   Server   `toml:"server"`
}

// Scryfall configures the card catalog client.
type Scryfall struct {
	BaseURL      string   `toml:"base_url"`
	UserAgent    string   `toml:"user_agent"`
	RequestDelay Duration `toml:"request_delay"`
	Timeout      Duration `toml:"timeout"`
	MemoSize     int      `toml:"memo_size"`
}

// Images configures image downloads and encoding.
type Images struct {
	Timeout Duration `toml:"timeout"`
	Quality int      `toml:"quality"`

	// Cache keeps downloaded images in the response cache for cache.ttl.
	// Off by default so every export sees the current artwork.
	Cache bool `toml:"cache"`
}

// Cache configures the response and image cache.
type Cache struct {
	Backend    string   `toml:"backend"`
	Dir        string   `toml:"dir"`
	RedisURL   string   `toml:"redis_url"`
	MemorySize int      `toml:"memory_size"`
	TTL        Duration `toml:"ttl"`
	SetsTTL    Duration `toml:"sets_ttl"`
}

// Export holds the defaults of the export command.
type Export struct {
	Format string `toml:"format"`
	OutDir string `toml:"out_dir"`
	Unique bool   `toml:"unique"`
}

// Upload configures the optional S3 artifact sink. An empty bucket disables it.
type Upload struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Prefix    string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`

	// ImageHosts limits the hosts exported decks may load images from.
	// Empty allows any http(s) host.
	ImageHosts []string `toml:"image_hosts"`
}

// Duration is a time.Duration written as a string ("100ms", "24h").
type Duration struct {
	time.Duration
}

// D wraps d.
func D(d time.Duration) Duration { return Duration{d} }

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads the file at path over [Default] and validates the result.
// An empty path means [Path]; a missing default file yields the defaults,
// while a missing explicit file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.Validate()
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}
	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Decode parses TOML data into cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default cache directory (~/.cache/decksmith).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
	if home := os.Getenv(env); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// ResolvedCacheDir returns Cache.Dir or the default cache directory.
func (c *Config) ResolvedCacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}

// UploadEnabled reports whether an upload bucket is configured.
func (c *Config) UploadEnabled() bool {
	return c.Upload.Bucket != ""
}

// S3 converts the upload section to sink settings.
func (c *Config) S3() sink.S3Config {
	return sink.S3Config{
		Bucket:    c.Upload.Bucket,
		Region:    c.Upload.Region,
		Endpoint:  c.Upload.Endpoint,
		AccessKey: c.Upload.AccessKey,
		SecretKey: c.Upload.SecretKey,
		Prefix:    c.Upload.Prefix,
	}
}
