package cli

import (
	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

The scripts complete subcommands and flags, XML file names for the input
document flags and directories for --output-dir.

  $ source <(odoo2mod completion bash)
  $ odoo2mod completion zsh > "${fpath[1]}/_odoo2mod"
  $ odoo2mod completion fish > ~/.config/fish/completions/odoo2mod.fish
  PS> odoo2mod completion powershell | Out-String | Invoke-Expression
`,
		// completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()

			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return root.GenBashCompletionV2(w, true)
			}
		},
	}
}

// registerFlagCompletions restricts file completion of the input flags to
// XML documents and of the config flags to YAML.
func registerFlagCompletions(cmd *cobra.Command) {
	for _, name := range []string{"views", "actions", "menus", "access"} {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.MarkFlagFilename(name, "xml")
		}
	}

	if cmd.Flags().Lookup("projection") != nil {
		_ = cmd.MarkFlagFilename("projection", "yaml", "yml")
	}

	if cmd.Flags().Lookup("output-dir") != nil {
		_ = cmd.MarkFlagDirname("output-dir")
	}
}
