package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/aggregate"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/pipeline"
	"github.com/matzehuels/decksmith/pkg/sink"
)

// exportOpts holds the export command options.
type exportOpts struct {
	format string
	out    string
	unique bool
	upload bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <deck>",
		Short: "Export a deck as an image archive or an A4 print sheet",
		Long: `Export a deck file as a ZIP of card images or as a paginated A4 PDF.

Formats:
  zip   one JPEG per card copy, back faces and tokens included
  3x3   9 cards per page (63x88mm)
  4x4   16 cards per page (50x69mm)
  3x6   18 cards per page (66x47mm, rotated)

Images that cannot be downloaded are skipped and listed after the export.`,
		Example: `  decksmith export izzet.json
  decksmith export izzet.json --format zip --unique
  decksmith export izzet.toml --format 3x6 --out prints/ --upload`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				opts.format = cfg.Export.Format
			}
			if !cmd.Flags().Changed("out") {
				opts.out = cfg.Export.OutDir
			}
			if !cmd.Flags().Changed("unique") {
				opts.unique = cfg.Export.Unique
			}
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "zip, 3x3, 4x4 or 3x6 (default from config)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&opts.unique, "unique", false, "archive one image per card instead of one per copy")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "also upload the artifact to the configured bucket")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runExport(ctx context.Context, path string, opts exportOpts) error {
	d, err := deck.Load(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDeck, err, "load %s", path)
	}
	if len(d.Cards) == 0 {
		return errors.New(errors.ErrCodeInvalidDeck, "deck %q has no cards", d.Name)
	}

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	printInfo("Exporting %s (%s)", StyleHighlight.Render(d.Name), plural(aggregate.Count(d), "image"))
	bar := newCardBar(os.Stderr, "Acquiring")
	defer bar.Close()

	res, err := e.runner.Export(ctx, d, pipeline.Options{
		Format:   opts.format,
		Unique:   opts.unique,
		Upload:   opts.upload,
		Progress: bar.Func(),
	})
	bar.Close()
	if err != nil {
		var empty *errors.EmptyArtifactError
		if errors.As(err, &empty) {
			printFailures(empty.Failures)
		}
		return err
	}

	local, err := sink.Dir{Path: opts.out}.Put(ctx, res.Name, res.ContentType, res.Data)
	if err != nil {
		return err
	}

	printSuccess("Exported %s", StyleHighlight.Render(res.Name))
	printFile(local)
	if res.Location != "" {
		printFile(res.Location)
	}
	printExportStats(res.Stats.Units, res.Stats.Acquired, res.Stats.Failed, res.Stats.Pages, res.Stats.Duration)
	printFailures(res.Failures)
	if !opts.upload && e.cfg.UploadEnabled() {
		printNewline()
		printNextStep("Upload it", "decksmith export "+path+" --format "+opts.format+" --upload")
	}
	return nil
}
