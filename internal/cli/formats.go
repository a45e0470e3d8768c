package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/layout"
)

// formatsCommand creates the formats command.
func (c *CLI) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the print sheet formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(formatsTable(layout.Formats()))
			printDetail("All formats print on portrait A4 with a %.1fmm gap.", layout.Gap)
			return nil
		},
	}
}

// formatsTable renders print formats with their per-page geometry.
func formatsTable(formats []layout.Format) string {
	rows := make([][]string, len(formats))
	for i, f := range formats {
		mx, my := layout.Margins(f)
		rotate := ""
		if f.Rotate {
			rotate = "yes"
		}
		rows[i] = []string{
			f.ID,
			f.Description,
			fmt.Sprintf("%gx%g", f.CellWidth, f.CellHeight),
			fmt.Sprintf("%.2f / %.2f", mx, my),
			rotate,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Cards", "Cell (mm)", "Margins x/y", "Rotated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return StyleHighlight
			}
			return listNormalStyle
		}).
		Render()
}
