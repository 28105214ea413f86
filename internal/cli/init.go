package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/recipe"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var (
		output     string
		name       string
		components []string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a recipe skeleton from selected components",
		Long: `Write a new recipe that places the chosen components with their default
parameters, one chip pitch apart.

Without --component an interactive picker lists every registered component.
The output format follows the file extension (.toml, .yaml or .yml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(components) == 0 {
				picked, err := pickComponents()
				if err != nil {
					return err
				}
				if picked == nil {
					printInfo("Nothing selected")
					return nil
				}
				components = picked
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
			}
			if err := writeScaffold(output, name, components, force); err != nil {
				return err
			}
			printSuccess("Wrote recipe %s", StyleHighlight.Render(name))
			printFile(output)
			printNewline()
			printNextStep("Build", appName+" build "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "chip.toml", "recipe file to write")
	cmd.Flags().StringVarP(&name, "name", "n", "", "recipe and top cell name (default: file name)")
	cmd.Flags().StringSliceVar(&components, "component", nil, "components to place, skipping the picker (comma-separated)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.RegisterFlagCompletionFunc("component", completeComponents)

	return cmd
}

// pickComponents runs the interactive picker. It returns nil when the user
// quits without confirming.
func pickComponents() ([]string, error) {
	final, err := tea.NewProgram(NewPickerModel(), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("component picker: %w", err)
	}
	m, ok := final.(PickerModel)
	if !ok || !m.Done {
		return nil, nil
	}
	return m.Chosen(), nil
}

// writeScaffold encodes a recipe for components to path.
func writeScaffold(path, name string, components []string, force bool) error {
	if err := errors.ValidateRecipeFilename(path); err != nil {
		return err
	}
	format, err := pdk.FormatFor(path)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s exists (use --force to overwrite)", path)
		}
	}

	r, err := recipe.Scaffold(name, components, pdk.Default())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := recipe.Encode(&buf, r, format); err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
