package config

import (
	"time"

	"github.com/matzehuels/decksmith/pkg/buildinfo"
	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/scryfall"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultImageTimeout   = 60 * time.Second
	defaultCacheTTL       = 24 * time.Hour
	defaultSetsTTL        = 24 * time.Hour
	defaultMemorySize     = 1024
	defaultServerAddr     = "127.0.0.1:8080"
	defaultRequestTimeout = 5 * time.Minute
	defaultMaxBodyBytes   = 4 << 20
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Scryfall: Scryfall{
			BaseURL:      scryfall.DefaultBaseURL,
			UserAgent:    buildinfo.UserAgent(),
			RequestDelay: D(scryfall.DefaultInterval),
			Timeout:      D(defaultTimeout),
			MemoSize:     scryfall.DefaultMemoSize,
		},
		Images: Images{
			Timeout: D(defaultImageTimeout),
			Quality: compose.DefaultQuality,
		},
		Cache: Cache{
			Backend:    BackendFile,
			MemorySize: defaultMemorySize,
			TTL:        D(defaultCacheTTL),
			SetsTTL:    D(defaultSetsTTL),
		},
		Export: Export{
			Format: layout.DefaultFormat,
			OutDir: ".",
		},
		Server: Server{
			Addr:           defaultServerAddr,
			RequestTimeout: D(defaultRequestTimeout),
			MaxBodyBytes:   defaultMaxBodyBytes,
			ImageHosts:     []string{"scryfall.io", "scryfall.com"},
		},
	}
}
