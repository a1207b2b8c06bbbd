package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	sceneio "github.com/matzehuels/spheregrid/pkg/io"
)

type viewOpts struct {
	items string
	seed  uint64
	still bool
	fps   int
}

func (c *CLI) viewCommand() *cobra.Command {
	opts := viewOpts{fps: 30}

	cmd := &cobra.Command{
		Use:   "view [scene-file]",
		Short: "Spin the sphere interactively in the terminal",
		Long: `View runs the widget full screen. Drag with the mouse to spin it; it keeps
turning with momentum after release. Arrow keys nudge it, r resets and q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := sceneio.DefaultScene()
			if len(args) == 1 {
				s, err := sceneio.ImportScene(args[0])
				if err != nil {
					return err
				}
				scene = s
			}
			if opts.items != "" {
				items, err := sceneio.ImportItems(opts.items)
				if err != nil {
					return err
				}
				scene.Items = items
			}
			if cmd.Flags().Changed("seed") {
				scene.Seed = opts.seed
			}
			if opts.still {
				scene.Widget.AutoRotate = false
			}
			if err := scene.Validate(); err != nil {
				return err
			}
			return c.runView(cmd.Context(), scene, opts.fps)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.items, "items", "", "file with the items to show")
	f.Uint64Var(&opts.seed, "seed", 0, "layout seed (random when unset)")
	f.BoolVar(&opts.still, "still", false, "disable auto-rotation")
	f.IntVar(&opts.fps, "fps", opts.fps, "frames per second")

	cmd.ValidArgsFunction = completeSceneFiles
	_ = cmd.MarkFlagFilename("items", sceneExtensions...)
	return cmd
}

func (c *CLI) runView(ctx context.Context, scene sceneio.Scene, fps int) error {
	if fps <= 0 || fps > 120 {
		return fmt.Errorf("fps %d out of range (1-120)", fps)
	}
	m := newSphereModel(scene.Widget, scene.Items, scene.Seed, fps, c.Logger)
	defer m.close()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err := p.Run()
	return err
}
