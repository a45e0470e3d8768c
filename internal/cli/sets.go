package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/setcatalog"
)

// setsOpts holds the sets command options.
type setsOpts struct {
	pick    bool
	refresh bool
	limit   int
}

// setsCommand creates the sets command.
func (c *CLI) setsCommand() *cobra.Command {
	var opts setsOpts

	cmd := &cobra.Command{
		Use:   "sets [query]",
		Short: "Search card sets",
		Long: `Search the set catalog by name or code. Without a query the most recent
sets are listed. With --pick an interactive list opens and the chosen set
code is printed, ready for "decksmith import --set".`,
		Example: `  decksmith sets horizons
  decksmith import list.txt --set "$(decksmith sets --pick)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return c.runSets(cmd.Context(), query, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.pick, "pick", "p", false, "choose a set interactively and print its code")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reload the set list from the catalog")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", setcatalog.DefaultLimit, "maximum number of sets to show")

	return cmd
}

func (c *CLI) runSets(ctx context.Context, query string, opts setsOpts) error {
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if opts.refresh {
		snap, err := setsSnapshot(e.cfg)
		if err == nil {
			err = setcatalog.NewSnapshotLoader(nil, snap, nil).Invalidate()
		}
		if err != nil {
			loggerFromContext(ctx).Warn("set snapshot not cleared", "error", err)
		}
		e.sets.Invalidate()
	}

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Loading sets...")
	spinner.Start()
	sets, err := e.sets.Search(ctx, query, opts.limit)
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.pick {
		return pickSet(ctx, e.sets, query, sets, opts.limit)
	}
	if len(sets) == 0 {
		printInfo("No sets match %q", query)
		return nil
	}
	fmt.Println(setsTable(sets))
	return nil
}

// pickSet runs the interactive picker and prints the chosen code on stdout.
func pickSet(ctx context.Context, svc *setcatalog.Service, query string, initial []setcatalog.Set, limit int) error {
	filter := func(q string) []setcatalog.Set {
		sets, err := svc.Search(ctx, q, limit)
		if err != nil {
			return nil
		}
		return sets
	}
	model := NewSetListModel(initial, filter)
	model.Query = query

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("set picker: %w", err)
	}
	if m, ok := final.(SetListModel); ok && m.Selected != nil {
		fmt.Println(m.Selected.Code)
	}
	return nil
}

// setsTable renders sets as a bordered table.
func setsTable(sets []setcatalog.Set) string {
	rows := make([][]string, len(sets))
	for i, s := range sets {
		rows[i] = []string{s.Code, s.Name, formatReleased(s.ReleasedAt), fmt.Sprint(s.CardCount)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Code", "Name", "Released", "Cards").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return StyleHighlight
			case col >= 2:
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}
