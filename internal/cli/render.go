package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	sceneio "github.com/matzehuels/spheregrid/pkg/io"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
)

// renderOpts holds the flags of the render command. Scene flags override the
// scene file only when set explicitly.
type renderOpts struct {
	output     string
	formats    string
	items      string
	seed       uint64
	ticks      int
	width      float64
	height     float64
	still      bool
	scale      float64
	background string
	noLabels   bool
	noCache    bool
	refresh    bool
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		ticks:  sceneio.DefaultTicks,
		width:  sceneio.DefaultWidth,
		height: sceneio.DefaultHeight,
		scale:  pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [scene-file]",
		Short: "Render a sphere snapshot to SVG, JSON, PNG or WebP",
		Long: `Render simulates the widget for a number of frames, replaying the scene's
scripted gesture if it has one, and writes the final frame in each requested
format. Scene files may be TOML, YAML or JSON; see "spheregrid config init".`,
		Example: `  spheregrid render
  spheregrid render scene.toml -f svg,png -o out/sphere
  spheregrid render --seed 7 --ticks 120 --still -f webp --scale 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			popts, err := opts.pipelineOptions(cmd, path)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), popts, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, png, webp (comma-separated)")
	f.StringVar(&opts.items, "items", "", "file with the items to show (replaces the scene's items)")
	f.Uint64Var(&opts.seed, "seed", 0, "layout seed (default 42)")
	f.IntVar(&opts.ticks, "ticks", opts.ticks, "frames to simulate after the first")
	f.Float64Var(&opts.width, "width", opts.width, "container width in pixels")
	f.Float64Var(&opts.height, "height", opts.height, "container height in pixels")
	f.BoolVar(&opts.still, "still", false, "disable auto-rotation")
	f.Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png, webp)")
	f.StringVar(&opts.background, "background", "", "background color as #rrggbb (default transparent)")
	f.BoolVar(&opts.noLabels, "no-labels", false, "draw nodes without labels")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the local cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	cmd.ValidArgsFunction = completeSceneFiles
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.MarkFlagFilename("items", sceneExtensions...)
	return cmd
}

// pipelineOptions merges the scene file at path (if any) with the flags.
func (o *renderOpts) pipelineOptions(cmd *cobra.Command, path string) (pipeline.Options, error) {
	scene := sceneio.DefaultScene()
	if path != "" {
		s, err := sceneio.ImportScene(path)
		if err != nil {
			return pipeline.Options{}, err
		}
		scene = s
	}

	changed := cmd.Flags().Changed
	if changed("seed") {
		scene.Seed = o.seed
	}
	if changed("ticks") {
		scene.Ticks = o.ticks
	}
	if changed("width") {
		scene.Width = o.width
	}
	if changed("height") {
		scene.Height = o.height
	}
	if changed("still") {
		scene.Widget.AutoRotate = !o.still
	}
	if o.items != "" {
		items, err := sceneio.ImportItems(o.items)
		if err != nil {
			return pipeline.Options{}, err
		}
		scene.Items = items
	}

	opts := pipeline.OptionsFromScene(scene)
	opts.Formats = parseFormats(o.formats)
	opts.Scale = o.scale
	opts.Background = o.background
	opts.NoLabels = o.noLabels
	opts.Refresh = o.refresh
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro *renderOpts) error {
	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, os.Stderr, "Rendering...")
	spin.Start()
	result, err := runner.Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	paths := outputPaths(ro.output, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(opts.Formats)))

	printSuccess(c.Out, "Rendered %s", strings.Join(opts.Formats, ", "))
	printStats(c.Out, result.Stats.Items, result.Stats.Visible, result.CacheInfo.FrameHit, result.CacheInfo.RenderHit)
	for _, format := range opts.Formats {
		printFile(c.Out, paths[format])
	}
	return nil
}

// outputPaths maps each format to its output file. A single format uses
// output as given; several formats treat it as a base name.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = appName
	} else if ext := filepath.Ext(base); ext != "" && pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
