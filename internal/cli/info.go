package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/registry"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		params   []string
		config   string
		defaults bool
	)

	cmd := &cobra.Command{
		Use:   "info <component>",
		Short: "Build one component and show its ports and size",
		Long: `Build a single component and print its bounding box, layers and ports.

Parameters override the defaults with --param key=value. Values are read as
JSON where possible (numbers, booleans, arrays) and as strings otherwise.
Dotted keys reach into nested components:

  unolayout info mzi --param length=200 --param splitter.component=mmi1x2`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeComponents,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				return printDefaults(args[0])
			}
			return c.runInfo(cmd.Context(), args[0], params, config)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter override key=value (repeatable)")
	cmd.Flags().StringVarP(&config, "config", "c", "", "process overrides file (.toml or .yaml)")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the default parameters as JSON instead of building")

	return cmd
}

// completeComponents completes registered component names.
func completeComponents(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return registry.Names(), cobra.ShellCompDirectiveNoFileComp
}

func printDefaults(name string) error {
	s, err := registry.Lookup(name)
	if err != nil {
		return err
	}
	params, err := s.DefaultParams()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

// runInfo builds the component and prints its summary.
func (c *CLI) runInfo(ctx context.Context, name string, params []string, config string) error {
	raw, err := parseParams(params)
	if err != nil {
		return err
	}

	cfg := pdk.Default()
	if config != "" {
		if cfg, err = pdk.Load(config); err != nil {
			return err
		}
	}
	cfg.Logger = loggerFromContext(ctx)

	comp, err := registry.Build(cfg, name, raw)
	if err != nil {
		return err
	}

	b := comp.BBox()
	w, h := comp.Size()
	printSuccess("Built %s", StyleHighlight.Render(comp.Name))
	printKeyValue("size", fmt.Sprintf("%.3f × %.3f µm", w, h))
	printKeyValue("bbox", fmt.Sprintf("(%.3f, %.3f) – (%.3f, %.3f)", b.LLx, b.LLy, b.URx, b.URy))
	printKeyValue("cells", fmt.Sprintf("%d", len(comp.Cells())))
	printKeyValue("layers", layerList(comp.Layers()))
	for _, k := range sortedKeys(comp.Info) {
		printKeyValue(k, fmt.Sprintf("%.4g", comp.Info[k]))
	}
	if ports := comp.Ports(); len(ports) > 0 {
		printNewline()
		fmt.Fprintln(stdout, portTable(ports))
	}
	return nil
}

// parseParams turns key=value pairs into a JSON object. Dotted keys build
// nested objects.
func parseParams(pairs []string) ([]byte, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	root := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}

		parts := strings.Split(key, ".")
		m := root
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return json.Marshal(root)
}

// portTable renders ports as a bordered table.
func portTable(ports []layout.Port) string {
	rows := make([][]string, len(ports))
	for i, p := range ports {
		rows[i] = []string{
			p.Name,
			fmt.Sprintf("%.3f", p.Center.X),
			fmt.Sprintf("%.3f", p.Center.Y),
			fmt.Sprintf("%g", p.Orientation),
			fmt.Sprintf("%g", p.Width),
			p.Layer.String(),
			string(p.Type),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Port", "X", "Y", "Angle", "Width", "Layer", "Type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func layerList(layers []layout.Layer) string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.String()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
