package cli

import (
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// completionScripts maps a shell name to its cobra script generator.
var completionScripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func completionShells() []string {
	shells := make([]string, 0, len(completionScripts))
	for s := range completionScripts {
		shells = append(shells, s)
	}
	sort.Strings(shells)
	return shells
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for bash, zsh, fish or powershell.

Component names complete for info and init --component, groups for list -g.

  source <(unolayout completion bash)
  unolayout completion zsh > "${fpath[1]}/_unolayout"
  unolayout completion fish > ~/.config/fish/completions/unolayout.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionScripts[args[0]](cmd.Root(), stdout)
		},
	}
}
