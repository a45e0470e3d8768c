package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/document"
	"github.com/matzehuels/decksmith/pkg/layout"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show page count and page sizes of a print sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := document.Inspect(f)
			if err != nil {
				return err
			}

			printKeyValue("File", args[0])
			printKeyValue("Pages", fmt.Sprint(info.Pages))
			for i, s := range info.Sizes {
				label := fmt.Sprintf("%.0f x %.0f mm", s.Width, s.Height)
				if !isA4(s) {
					label = StyleWarning.Render(label + " (not A4)")
				}
				printKeyValue(fmt.Sprintf("Page %d", i+1), label)
			}
			return nil
		},
	}
}

// isA4 reports whether a page is portrait A4 within a millimetre.
func isA4(s document.PageSize) bool {
	near := func(a, b float64) bool { return a-b < 1 && b-a < 1 }
	return near(s.Width, layout.PageWidth) && near(s.Height, layout.PageHeight)
}
