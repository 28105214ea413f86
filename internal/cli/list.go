package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/unolab/unolayout/pkg/registry"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered components",
		Long: `List every component generator that recipes can place, grouped by package.

Use 'unolayout info <component>' to see a component's ports and
'unolayout init' to start a recipe from a selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeComponentList(stdout, group)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "only list one group (e.g. wg, awg, teststruct)")
	cmd.RegisterFlagCompletionFunc("group", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return groupOrder(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// groupOrder returns the registry groups in registration order.
func groupOrder() []string {
	var order []string
	seen := map[string]bool{}
	for _, s := range registry.All {
		if !seen[s.Group] {
			seen[s.Group] = true
			order = append(order, s.Group)
		}
	}
	return order
}

// writeComponentList prints the components of every group, or only of
// group when it is set.
func writeComponentList(w io.Writer, group string) error {
	groups := registry.Groups()
	if group != "" {
		if _, ok := groups[group]; !ok {
			return fmt.Errorf("unknown group %q (have %v)", group, groupOrder())
		}
	}

	nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(40)
	for _, g := range groupOrder() {
		if group != "" && g != group {
			continue
		}
		fmt.Fprintln(w, StyleTitle.Render(g))
		for _, s := range groups[g] {
			line := "  " + nameStyle.Render(s.Name) + StyleDim.Render(s.Doc)
			if s.ChildKey != "" {
				line += StyleDim.Render(fmt.Sprintf(" [%s]", s.ChildKey))
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
	return nil
}
