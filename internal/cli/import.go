package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/archive"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/pipeline"
	"github.com/matzehuels/decksmith/pkg/setcatalog"
)

// importOpts holds the import command options.
type importOpts struct {
	name     string
	set      string
	noTokens bool
	delay    time.Duration
	output   string
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <list.txt|->",
		Short: "Resolve a card list into a deck file",
		Long: `Resolve a plain-text card list against the card catalog and save it as a deck.

Each line is "<quantity> <name>" (an "x" after the quantity is allowed) or just
a card name. Catalog calls are made one at a time with a pause in between.`,
		Example: `  decksmith import list.txt --name "Izzet Tempo"
  decksmith import list.txt --set mh3 -o izzet.toml
  pbpaste | decksmith import - --name Burn --no-tokens`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "deck name (default: file name)")
	cmd.Flags().StringVar(&opts.set, "set", "", "preferred set code to resolve printings from")
	cmd.Flags().BoolVar(&opts.noTokens, "no-tokens", false, "skip the tokens cards create")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause between catalog calls (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "deck file to write, .json or .toml (default: <name>.json)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input string, opts importOpts) error {
	text, err := readInput(input)
	if err != nil {
		return err
	}
	name := opts.name
	if name == "" {
		name = nameFromPath(input)
	}
	out := opts.output
	if out == "" {
		out = archive.SnakeCase(name) + deck.ExtJSON
	}
	if ext := filepath.Ext(out); ext != deck.ExtJSON && ext != deck.ExtTOML {
		return errors.New(errors.ErrCodeInvalidInput, "output must be a .json or .toml file: %s", out)
	}

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	var preferred *deck.PreferredSet
	if opts.set != "" {
		preferred, err = findPreferredSet(ctx, e.sets, opts.set)
		if err != nil {
			return err
		}
	}
	delay := opts.delay
	if delay == 0 {
		delay = e.cfg.Scryfall.RequestDelay.Duration
	}

	bar := newCardBar(os.Stderr, "Importing")
	defer bar.Close()
	timer := newElapsed(loggerFromContext(ctx))

	res, err := e.runner.Import(ctx, name, text, pipeline.ImportOptions{
		PreferredSet: preferred,
		NoTokens:     opts.noTokens,
		Delay:        delay,
		Progress:     bar.Func(),
	})
	bar.Close()
	if err != nil {
		return err
	}

	if res.Deck == nil {
		printError("No cards could be found")
		printFailures(res.Unresolved)
		return errors.New(errors.ErrCodeNotFound, "none of the %d requested cards were found", res.Requested)
	}
	if err := deck.Save(out, res.Deck); err != nil {
		return fmt.Errorf("save deck: %w", err)
	}

	timer.done(fmt.Sprintf("Imported %s", plural(res.Deck.CardCount(), "card")))
	printSuccess("Saved %s", StyleHighlight.Render(res.Deck.Name))
	printFile(out)
	if len(res.Unresolved) > 0 {
		printWarning("%s not found:", plural(len(res.Unresolved), "line"))
		for _, u := range res.Unresolved {
			printDetail("%s", u)
		}
	}
	printNewline()
	printNextStep("Print it", "decksmith export "+out+" --format 3x3")
	return nil
}

// findPreferredSet resolves a set code against the catalog.
func findPreferredSet(ctx context.Context, sets *setcatalog.Service, code string) (*deck.PreferredSet, error) {
	if err := errors.ValidateSetCode(code); err != nil {
		return nil, err
	}
	set, ok, err := sets.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSet, "unknown set %q (try: decksmith sets %s)", code, code)
	}
	return deck.NewPreferredSet(set.Code, set.Name), nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// nameFromPath derives a deck name from a list file name:
// "izzet-tempo.txt" becomes "izzet tempo".
func nameFromPath(path string) string {
	if path == "-" {
		return "Imported deck"
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.Join(strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' }), " ")
	if base == "" {
		return "Imported deck"
	}
	return base
}
