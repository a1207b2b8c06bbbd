package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	sceneio "github.com/matzehuels/spheregrid/pkg/io"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and inspect scene files",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a scene file with every default spelled out",
		Long: `Write a scene file containing the default widget options, the default
items and an example drag gesture. The format follows the extension:
.toml (default), .yaml/.yml or .json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sceneFileName
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := sceneio.ExportScene(exampleScene(), path); err != nil {
				return err
			}
			printSuccess(c.Out, "Wrote scene file")
			printFile(c.Out, path)
			printNextStep(c.Out, "Render it", "spheregrid render "+path+" -f svg,png")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// exampleScene is the default scene with items and a short drag filled in.
func exampleScene() sceneio.Scene {
	s := sceneio.DefaultScene()
	s.Seed = 42
	s.Items = sphere.DefaultItems()
	s.Gesture = []sceneio.Step{
		{Tick: 10, Type: sphere.EventPointerDown.String(), X: 200, Y: 200},
		{Tick: 11, Type: sphere.EventPointerMove.String(), X: 230, Y: 190},
		{Tick: 12, Type: sphere.EventPointerMove.String(), X: 260, Y: 185},
		{Tick: 13, Type: sphere.EventPointerUp.String(), X: 260, Y: 185},
	}
	return s
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the effective scene with defaults applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := sceneio.DefaultScene()
			source := "defaults"
			if len(args) == 1 {
				s, err := sceneio.ImportScene(args[0])
				if err != nil {
					return err
				}
				scene, source = s, args[0]
			}
			scene.Widget = scene.Widget.WithDefaults()
			if scene.Items == nil {
				scene.Items = sphere.DefaultItems()
			}

			rows, err := configRows(scene.Widget)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Out, StyleTitle.Render("Scene")+" "+StyleDim.Render("("+source+")"))
			printKeyValue(c.Out, "size", fmt.Sprintf("%gx%g", scene.Width, scene.Height))
			printKeyValue(c.Out, "ticks", strconv.Itoa(scene.Ticks))
			printKeyValue(c.Out, "seed", strconv.FormatUint(scene.Seed, 10))
			printKeyValue(c.Out, "gesture", fmt.Sprintf("%d steps", len(scene.Gesture)))
			fmt.Fprintln(c.Out)
			fmt.Fprintln(c.Out, renderTable([]string{"Option", "Value"}, rows))
			fmt.Fprintln(c.Out, renderTable([]string{"#", "ID", "Name", "Icon"}, itemRows(scene.Items)))
			return nil
		},
	}
}

// configRows flattens cfg into sorted option/value rows using its JSON names.
func configRows(cfg sphere.Config) ([][]string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	var rows [][]string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			rows = append(rows, []string{prefix + k, fmt.Sprint(v)})
		}
	}
	walk("", m)
	slices.SortFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return rows, nil
}

func itemRows(items []sphere.Item) [][]string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{strconv.Itoa(i), it.ID, it.Name, it.Icon}
	}
	return rows
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			if col == 0 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle.Foreground(colorWhite)
		}).
		Render()
}
