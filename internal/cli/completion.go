package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for decksmith.

Deck file arguments complete to .json and .toml files, and --format
completes to the archive and the print formats.

To load completions:

Bash:
  $ source <(decksmith completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ decksmith completion bash > /etc/bash_completion.d/decksmith
  # macOS:
  $ decksmith completion bash > $(brew --prefix)/etc/bash_completion.d/decksmith

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ decksmith completion zsh > "${fpath[1]}/_decksmith"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ decksmith completion fish | source

  # To load completions for each session, execute once:
  $ decksmith completion fish > ~/.config/fish/completions/decksmith.fish

PowerShell:
  PS> decksmith completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> decksmith completion powershell > decksmith.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeDeckFiles completes the first positional argument to deck files.
func completeDeckFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes --format values.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := []string{pipeline.FormatArchive + "\timage archive"}
	for _, f := range layout.Formats() {
		out = append(out, f.ID+"\t"+f.Description)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
