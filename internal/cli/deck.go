package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/display"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/pipeline"
	"github.com/matzehuels/decksmith/pkg/scryfall"
)

// deckCommand creates the deck command and its editing subcommands. Every
// subcommand loads the deck file, applies one edit and saves it in place.
func (c *CLI) deckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Show and edit deck files",
		Long: `Show and edit deck files.

Cards are addressed by printing ID or by name (case-insensitive).`,
	}

	cmd.AddCommand(c.deckShowCommand())
	cmd.AddCommand(c.deckAddCommand())
	cmd.AddCommand(c.deckQtyCommand())
	cmd.AddCommand(c.deckArtCommand())
	cmd.AddCommand(c.deckPrintingCommand())
	cmd.AddCommand(c.deckRenameCommand())
	cmd.AddCommand(c.deckCoverCommand())
	cmd.AddCommand(c.deckConvertCommand())

	return cmd
}

// editDeck loads path, applies fn and saves the result.
func editDeck(path string, fn func(*deck.Deck) error) (*deck.Deck, error) {
	d, err := deck.Load(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDeck, err, "load %s", path)
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := deck.Save(path, d); err != nil {
		return nil, fmt.Errorf("save deck: %w", err)
	}
	return d, nil
}

// findItem resolves a card argument to a line item by printing ID, then by
// name.
func findItem(d *deck.Deck, ref string) (*deck.LineItem, error) {
	if it, ok := d.Find(ref); ok {
		return it, nil
	}
	var match *deck.LineItem
	for i := range d.Cards {
		if !strings.EqualFold(d.Cards[i].Printing.Name, ref) {
			continue
		}
		if match != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%q matches several printings; use a printing ID", ref)
		}
		match = &d.Cards[i]
	}
	if match == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no card %q in deck %q", ref, d.Name)
	}
	return match, nil
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) deckShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <deck>",
		Short:             "List the cards of a deck",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deck.Load(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDeck, err, "load %s", args[0])
			}
			printDeck(d)
			return nil
		},
	}
}

func printDeck(d *deck.Deck) {
	fmt.Println(StyleTitle.Render(d.Name))
	if d.PreferredSet != nil {
		printKeyValue("Set", fmt.Sprintf("%s (%s)", d.PreferredSet.Name, d.PreferredSet.Code))
	}
	printKeyValue("Cards", fmt.Sprint(d.CardCount()))
	printKeyValue("Updated", d.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
	if len(d.Cards) == 0 {
		return
	}
	fmt.Println(deckTable(d))
}

// deckTable renders the line items of d. The cover card is starred.
func deckTable(d *deck.Deck) string {
	cover, _ := d.Cover()
	rows := make([][]string, len(d.Cards))
	for i, it := range d.Cards {
		name := it.Printing.Name
		if cover != nil && cover.Printing.ID == it.Printing.ID {
			name = "★ " + name
		}
		var notes []string
		if _, ok := display.ItemBack(it); ok {
			notes = append(notes, "dual-faced")
		}
		if it.CustomImage != "" || it.CustomBackImage != "" {
			notes = append(notes, "custom art")
		}
		if n := len(it.Tokens); n > 0 {
			notes = append(notes, plural(n, "token"))
		}
		rows[i] = []string{
			strconv.Itoa(it.Quantity),
			name,
			strings.ToUpper(it.Printing.SetCode),
			it.Printing.CollectorNumber,
			strings.Join(notes, ", "),
			it.Printing.ID,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Qty", "Card", "Set", "#", "Notes", "Printing").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return StyleNumber
			case col >= 4:
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

// =============================================================================
// add
// =============================================================================

func (c *CLI) deckAddCommand() *cobra.Command {
	var (
		qty      int
		set      string
		noTokens bool
	)
	cmd := &cobra.Command{
		Use:   "add <deck> <card name>",
		Short: "Add copies of a card",
		Long: `Add copies of a card. If the deck already holds the same card in any
printing, its quantity grows instead. A new deck file is created when <deck>
does not exist yet.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeckAdd(cmd.Context(), args[0], args[1], qty, set, noTokens)
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "number of copies")
	cmd.Flags().StringVar(&set, "set", "", "preferred set code (default: the deck's preferred set)")
	cmd.Flags().BoolVar(&noTokens, "no-tokens", false, "skip the tokens the card creates")
	return cmd
}

func (c *CLI) runDeckAdd(ctx context.Context, path, name string, qty int, set string, noTokens bool) error {
	if qty <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "--qty must be positive, got %d", qty)
	}
	d, err := loadOrCreate(path)
	if err != nil {
		return err
	}

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	preferred := d.PreferredSet
	if set != "" {
		if preferred, err = findPreferredSet(ctx, e.sets, set); err != nil {
			return err
		}
	}

	res, err := e.runner.Import(ctx, d.Name, fmt.Sprintf("%d %s", qty, name), pipeline.ImportOptions{
		PreferredSet: preferred,
		NoTokens:     noTokens,
	})
	if err != nil {
		return err
	}
	if res.Deck == nil {
		return errors.New(errors.ErrCodeNotFound, "card not found: %s", name)
	}
	for _, it := range res.Deck.Cards {
		if err := d.Add(it.Printing, it.Quantity, it.Tokens); err != nil {
			return err
		}
		printSuccess("Added %dx %s %s", it.Quantity, StyleHighlight.Render(it.Printing.Name),
			StyleDim.Render("("+strings.ToUpper(it.Printing.SetCode)+")"))
	}
	if err := deck.Save(path, d); err != nil {
		return fmt.Errorf("save deck: %w", err)
	}
	printDetail("%s now has %s", d.Name, plural(d.CardCount(), "card"))
	return nil
}

// loadOrCreate loads a deck file, or starts an empty deck named after the
// file when it does not exist.
func loadOrCreate(path string) (*deck.Deck, error) {
	d, err := deck.Load(path)
	if err == nil {
		return d, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidDeck, err, "load %s", path)
	}
	if ext := filepath.Ext(path); ext != deck.ExtJSON && ext != deck.ExtTOML {
		return nil, errors.New(errors.ErrCodeInvalidInput, "deck file must be .json or .toml: %s", path)
	}
	return deck.New(nameFromPath(path), nil, nil), nil
}

// =============================================================================
// qty
// =============================================================================

func (c *CLI) deckQtyCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "qty <deck> <card> <quantity>",
		Short:             "Set the quantity of a card (0 removes it)",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[2])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "quantity must be a number: %q", args[2])
			}
			var name string
			_, err = editDeck(args[0], func(d *deck.Deck) error {
				it, err := findItem(d, args[1])
				if err != nil {
					return err
				}
				name = it.Printing.Name
				return d.SetQuantity(it.Printing.ID, q)
			})
			if err != nil {
				return err
			}
			if q == 0 {
				printSuccess("Removed %s", StyleHighlight.Render(name))
			} else {
				printSuccess("%s set to %d", StyleHighlight.Render(name), q)
			}
			return nil
		},
	}
}

// =============================================================================
// art
// =============================================================================

func (c *CLI) deckArtCommand() *cobra.Command {
	var (
		back     bool
		token    int
		clearArt bool
	)
	cmd := &cobra.Command{
		Use:   "art <deck> <card> [image]",
		Short: "Override the artwork of a card or one of its tokens",
		Long: `Override the artwork of a card. The image is an http(s) URL, a file:// URL or
a local path. --back targets the back face of a dual-faced card and --token N
the N-th token (1-based) the card creates. --clear restores the catalog image.`,
		Example: `  decksmith deck art burn.json "Lightning Bolt" https://example.com/bolt.jpg
  decksmith deck art burn.json "Delver of Secrets" art/insectile.png --back
  decksmith deck art burn.json "Young Pyromancer" --token 1 --clear`,
		Args:              cobra.RangeArgs(2, 3),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 3 {
				ref = args[2]
			}
			if clearArt == (ref != "") {
				return errors.New(errors.ErrCodeInvalidInput, "give either an image or --clear")
			}
			if back && token > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--back and --token cannot be combined")
			}
			if ref != "" {
				if err := errors.ValidateImageRef(ref); err != nil {
					return err
				}
			}
			_, err := editDeck(args[0], func(d *deck.Deck) error {
				it, err := findItem(d, args[1])
				if err != nil {
					return err
				}
				return applyArt(d, it, ref, back, token)
			})
			if err != nil {
				return err
			}
			if clearArt {
				printSuccess("Restored catalog artwork")
			} else {
				printSuccess("Artwork set")
				printFile(ref)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&back, "back", false, "set the back face artwork")
	cmd.Flags().IntVar(&token, "token", 0, "set the artwork of the N-th token (1-based)")
	cmd.Flags().BoolVar(&clearArt, "clear", false, "remove the override")
	return cmd
}

// applyArt sets or, for an empty ref, clears one artwork override.
func applyArt(d *deck.Deck, it *deck.LineItem, ref string, back bool, token int) error {
	id := it.Printing.ID
	switch {
	case token > 0:
		if token > len(it.Tokens) {
			return errors.New(errors.ErrCodeInvalidInput, "%s creates %s", it.Printing.Name, plural(len(it.Tokens), "token"))
		}
		if ref == "" {
			return d.ClearTokenCustomArt(id, token-1)
		}
		return d.SetTokenCustomArt(id, token-1, ref)
	case back:
		if !display.IsDualFaced(it.Printing.Layout) {
			return errors.New(errors.ErrCodeInvalidInput, "%s has no back face", it.Printing.Name)
		}
		if ref == "" {
			return d.ClearCustomBackArt(id)
		}
		return d.SetCustomBackArt(id, ref)
	}
	if ref == "" {
		return d.ClearCustomArt(id)
	}
	return d.SetCustomArt(id, ref)
}

// =============================================================================
// printing
// =============================================================================

func (c *CLI) deckPrintingCommand() *cobra.Command {
	var (
		set   string
		token int
	)
	cmd := &cobra.Command{
		Use:   "printing <deck> <card>",
		Short: "Swap a card or one of its tokens to another printing",
		Long: `Pick another printing of a card interactively. Quantity, tokens and
artwork overrides are kept. With --set only printings from that set are listed.
--token N swaps the N-th token (1-based) the card creates instead.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeckPrinting(cmd.Context(), args[0], args[1], set, token)
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "only list printings from this set")
	cmd.Flags().IntVar(&token, "token", 0, "swap the N-th token (1-based)")
	return cmd
}

func (c *CLI) runDeckPrinting(ctx context.Context, path, ref, set string, token int) error {
	d, err := deck.Load(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDeck, err, "load %s", path)
	}
	it, err := findItem(d, ref)
	if err != nil {
		return err
	}
	owner := it.Printing.ID
	current, err := printingTarget(it, token)
	if err != nil {
		return err
	}

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Loading printings...")
	spinner.Start()
	printings, err := variations(ctx, e.client, current, set)
	spinner.Stop()
	if err != nil {
		return err
	}
	if len(printings) == 0 {
		printInfo("No other printings of %s", current.Name)
		return nil
	}

	p := tea.NewProgram(NewPrintingListModel(printings, current.ID), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("printing picker: %w", err)
	}
	m, ok := final.(PrintingListModel)
	if !ok || m.Selected == nil || m.Selected.ID == current.ID {
		return nil
	}
	if err := replacePrinting(d, owner, token, *m.Selected); err != nil {
		return err
	}
	if err := deck.Save(path, d); err != nil {
		return fmt.Errorf("save deck: %w", err)
	}
	printSuccess("%s now uses %s #%s", StyleHighlight.Render(current.Name),
		strings.ToUpper(m.Selected.SetCode), m.Selected.CollectorNumber)
	return nil
}

// printingTarget returns the printing a swap starts from: the card itself,
// or its token-th token when token is positive.
func printingTarget(it *deck.LineItem, token int) (deck.Printing, error) {
	if token <= 0 {
		return it.Printing, nil
	}
	if token > len(it.Tokens) {
		return deck.Printing{}, errors.New(errors.ErrCodeInvalidInput, "%s creates %s", it.Printing.Name, plural(len(it.Tokens), "token"))
	}
	return it.Tokens[token-1].Printing, nil
}

func replacePrinting(d *deck.Deck, owner string, token int, p deck.Printing) error {
	if token > 0 {
		return d.ReplaceToken(owner, token-1, p)
	}
	return d.ReplacePrinting(owner, p)
}

// variations lists the printings of p, optionally limited to one set.
func variations(ctx context.Context, client *scryfall.Client, p deck.Printing, set string) ([]deck.Printing, error) {
	if set == "" {
		list, err := client.CardVariations(ctx, p.OracleID, p.Name, 1)
		if err != nil {
			return nil, err
		}
		return list.Printings(), nil
	}
	if err := errors.ValidateSetCode(set); err != nil {
		return nil, err
	}
	list, err := client.CardVariationsInSet(ctx, set, p.OracleID, p.Name, 1)
	if err != nil {
		return nil, err
	}
	return list.Printings(), nil
}

// =============================================================================
// rename, cover, convert
// =============================================================================

func (c *CLI) deckRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <deck> <new name>",
		Short:             "Rename a deck",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[1])
			if err := errors.ValidateDeckName(name); err != nil {
				return err
			}
			if _, err := editDeck(args[0], func(d *deck.Deck) error { return d.Rename(name) }); err != nil {
				return err
			}
			printSuccess("Renamed to %s", StyleHighlight.Render(name))
			return nil
		},
	}
}

func (c *CLI) deckCoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "cover <deck> <card>",
		Short:             "Choose the card shown as the deck cover",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			_, err := editDeck(args[0], func(d *deck.Deck) error {
				it, err := findItem(d, args[1])
				if err != nil {
					return err
				}
				name = it.Printing.Name
				return d.SetCover(it.Printing.ID)
			})
			if err != nil {
				return err
			}
			printSuccess("Cover set to %s", StyleHighlight.Render(name))
			return nil
		},
	}
}

func (c *CLI) deckConvertCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "import <exported.json|.toml>",
		Short: "Import a deck exported elsewhere as a new deck",
		Long: `Read a deck export and save it as a new deck with a fresh ID and
timestamps. The output format follows the extension of --output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDeckFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			d, err := deck.Import(f, filepath.Ext(args[0]))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDeck, err, "import %s", args[0])
			}
			if output == "" {
				output = d.ID + deck.ExtJSON
			}
			if err := deck.Save(output, d); err != nil {
				return fmt.Errorf("save deck: %w", err)
			}
			printSuccess("Imported %s (%s)", StyleHighlight.Render(d.Name), plural(d.CardCount(), "card"))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "deck file to write (default: <new id>.json)")
	return cmd
}
