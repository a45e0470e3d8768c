package cli

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/internal/server"
	"github.com/matzehuels/decksmith/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import and export API over HTTP",
		Long: `Serve the import and export API over HTTP.

Routes:
  GET  /healthz
  GET  /v1/formats
  GET  /v1/sets?q=&limit=
  GET  /v1/cards/named?name=&set=
  POST /v1/import   {"name", "list", "preferred_set", "no_tokens"}
  POST /v1/export?format=&unique=&upload=   (deck JSON body)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, cmd.Flags().Changed("addr"))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, override bool) error {
	// Keep server entries apart from CLI runs sharing a Redis instance.
	c.keyer = cache.NewScopedKeyer(nil, "server:")
	c.remoteImages = true
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := server.Config{
		Addr:           e.cfg.Server.Addr,
		RequestTimeout: e.cfg.Server.RequestTimeout.Duration,
		MaxBodyBytes:   e.cfg.Server.MaxBodyBytes,
		ImageHosts:     e.cfg.Server.ImageHosts,
	}
	if override {
		cfg.Addr = addr
	}

	printInfo("Serving on %s", StyleHighlight.Render("http://"+cfg.Addr))
	err = server.New(cfg, e.runner, e.sets, c.Logger).ListenAndServe(ctx)
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
