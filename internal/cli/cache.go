package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/cache"
	"github.com/matzehuels/decksmith/pkg/config"
	"github.com/matzehuels/decksmith/pkg/setcatalog"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and image cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached catalog responses, images and the set list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			count, dir, err := clearCache(cfg)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendFile {
				printWarning("cache backend is %q; only the on-disk cache was cleared", cfg.Cache.Backend)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// clearCache empties the on-disk response cache and drops the set snapshot.
func clearCache(cfg *config.Config) (int, string, error) {
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return 0, "", fmt.Errorf("get cache dir: %w", err)
	}

	fc, err := cache.NewFileCache(filepath.Join(dir, "http"))
	if err != nil {
		return 0, dir, err
	}
	count, err := fc.Clear()
	if err != nil {
		return count, dir, err
	}

	snap, err := setsSnapshot(cfg)
	if err != nil {
		return count, dir, err
	}
	return count, dir, setcatalog.NewSnapshotLoader(nil, snap, nil).Invalidate()
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir, err := cfg.ResolvedCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
