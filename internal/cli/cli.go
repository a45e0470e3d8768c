package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/buildinfo"
	"github.com/matzehuels/decksmith/pkg/cache"
	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/config"
	"github.com/matzehuels/decksmith/pkg/httputil"
	"github.com/matzehuels/decksmith/pkg/pipeline"
	"github.com/matzehuels/decksmith/pkg/scryfall"
	"github.com/matzehuels/decksmith/pkg/setcatalog"
	"github.com/matzehuels/decksmith/pkg/sink"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "decksmith"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *config.Config
	keyer      cache.Keyer

	// remoteImages restricts image loading to the server's allowed hosts.
	remoteImages bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Decksmith builds print sheets and image archives from card decks",
		Long:         `Decksmith imports card lists into decks, edits them, and exports them as image archives or print-ready A4 sheets.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/decksmith/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the response and image cache")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.setsCommand())
	root.AddCommand(c.deckCommand())
	root.AddCommand(c.formatsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment Factory
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// env is the set of collaborators a command works with.
type env struct {
	cfg    *config.Config
	cache  cache.Cache
	client *scryfall.Client
	sets   *setcatalog.Service
	runner *pipeline.Runner
}

// Close releases the cache.
func (e *env) Close() error {
	return e.cache.Close()
}

// open wires the catalog client, image pipeline and set catalog from the
// configuration. The sink is attached only when an upload bucket is set.
func (c *CLI) open(ctx context.Context) (*env, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cc, err := c.openCache(cfg)
	if err != nil {
		return nil, err
	}
	if rc, ok := cc.(*cache.RedisCache); ok {
		if err := rc.Ping(ctx); err != nil {
			c.Logger.Warn("redis unreachable, cache disabled", "error", err)
			rc.Close()
			cc = cache.NewNullCache()
		}
	}
	ttl := cfg.Cache.TTL.Duration

	client := scryfall.NewClient(
		scryfall.WithBaseURL(cfg.Scryfall.BaseURL),
		scryfall.WithUserAgent(cfg.Scryfall.UserAgent),
		scryfall.WithHTTPClient(httputil.NewHTTPClient(cfg.Scryfall.Timeout.Duration)),
		scryfall.WithInterval(cfg.Scryfall.RequestDelay.Duration),
		scryfall.WithMemoSize(cfg.Scryfall.MemoSize),
		scryfall.WithCache(cc, ttl),
		scryfall.WithKeyer(c.cacheKeyer()),
		scryfall.WithLogger(c.Logger),
	)

	loaderOpts := []compose.LoaderOption{
		compose.WithTimeout(cfg.Images.Timeout.Duration),
		compose.WithUserAgent(cfg.Scryfall.UserAgent),
		compose.WithKeyer(c.cacheKeyer()),
		compose.WithLogger(c.Logger),
	}
	if cfg.Images.Cache {
		loaderOpts = append(loaderOpts, compose.WithCache(cc, ttl))
	}
	if c.remoteImages {
		loaderOpts = append(loaderOpts, compose.WithRemoteOnly(cfg.Server.ImageHosts))
	}
	loader := compose.NewLoader(loaderOpts...)
	acq := compose.NewAcquirer(compose.NewRaster(loader).WithQuality(cfg.Images.Quality), c.Logger)

	runner := pipeline.NewRunner(acq, client, c.Logger)
	if cfg.UploadEnabled() {
		s3, err := sink.NewS3(ctx, cfg.S3())
		if err != nil {
			cc.Close()
			return nil, err
		}
		runner.WithSink(s3)
	}

	return &env{
		cfg:    cfg,
		cache:  cc,
		client: client,
		sets:   c.newSetService(cfg, client),
		runner: runner,
	}, nil
}

// openCache builds the configured cache backend.
func (c *CLI) openCache(cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemoryCache(cfg.Cache.MemorySize)
	case config.BackendRedis:
		return cache.NewRedisCache(cfg.Cache.RedisURL)
	case config.BackendNone:
		return cache.NewNullCache(), nil
	}
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(filepath.Join(dir, "http"))
}

// cacheKeyer returns the key layout for the shared cache.
func (c *CLI) cacheKeyer() cache.Keyer {
	if c.keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return c.keyer
}

// newSetService builds the set catalog, backed by an on-disk snapshot unless
// caching is disabled.
func (c *CLI) newSetService(cfg *config.Config, client *scryfall.Client) *setcatalog.Service {
	ttl := cfg.Cache.SetsTTL.Duration
	loader := setcatalog.FromClient(client)
	if !c.noCache && cfg.Cache.Backend != config.BackendNone {
		if dir, err := cfg.ResolvedCacheDir(); err == nil {
			if snap, err := httputil.NewCache(filepath.Join(dir, "sets"), ttl); err == nil {
				loader = setcatalog.NewSnapshotLoader(loader, snap, c.Logger)
			}
		}
	}
	return setcatalog.New(loader, setcatalog.WithTTL(ttl))
}

// setsSnapshot returns the on-disk set snapshot store.
func setsSnapshot(cfg *config.Config) (*httputil.Cache, error) {
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewCache(filepath.Join(dir, "sets"), cfg.Cache.SetsTTL.Duration)
}
