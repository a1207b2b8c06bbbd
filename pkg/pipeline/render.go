package pipeline

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/spheregrid/pkg/errors"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/render/sink"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Render generates output artifacts in the requested formats.
func Render(frame render.Frame, rot sphere.Rotation, opts Options) (map[string][]byte, error) {
	bg, err := parseBackground(opts.Background)
	if err != nil {
		return nil, err
	}
	// The frame may come from a live instance whose size opts never saw.
	if hasRaster(opts.Formats) {
		if err := CheckRasterSize(frame.Width, frame.Height, opts.Scale); err != nil {
			return nil, err
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(frame, svgOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(frame, sink.WithJSONRotation(rot), sink.WithJSONSeed(opts.Seed))
		case FormatPNG:
			data, err = sink.RenderPNG(frame, rasterOptions(opts, bg)...)
		case FormatWebP:
			data, err = sink.RenderWebP(frame, rasterOptions(opts, bg)...)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Background != "" {
		out = append(out, sink.WithBackground(opts.Background))
	}
	if opts.NoLabels {
		out = append(out, sink.WithoutLabels())
	}
	return out
}

func rasterOptions(opts Options, bg color.Color) []sink.RasterOption {
	out := []sink.RasterOption{sink.WithScale(opts.Scale)}
	if bg != nil {
		out = append(out, sink.WithRasterBackground(bg))
	}
	if opts.NoLabels {
		out = append(out, sink.WithoutRasterLabels())
	}
	return out
}

// parseBackground parses a "#rrggbb" background. Empty means transparent.
func parseBackground(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid background %q (want #rrggbb)", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
