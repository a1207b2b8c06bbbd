package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/spheregrid/pkg/render"
)

const nodeCSS = `
    .node circle { stroke: rgba(255,255,255,0.35); stroke-width: 1.5; }
    .node text { fill: #fff; font-family: system-ui, sans-serif; font-weight: 600; text-anchor: middle; dominant-baseline: central; pointer-events: none; }
    .node.hovered circle { stroke: #fff; stroke-width: 2.5; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	labels     bool
}

// WithBackground fills the frame with a CSS color before drawing nodes.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithoutLabels draws bare circles.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders f as a standalone SVG document.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	for _, e := range f.PaintOrder() {
		r.renderNode(&buf, e)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderNode(buf *bytes.Buffer, e render.Element) {
	class := "node"
	if e.Hovered {
		class += " hovered"
	}
	fmt.Fprintf(buf, `  <g class="%s" id="node-%s" data-icon="%s" opacity="%.3f">`+"\n",
		class, html.EscapeString(e.ID), html.EscapeString(e.Icon), e.Opacity)
	fmt.Fprintf(buf, "    <title>%s</title>\n", html.EscapeString(e.Name))
	fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
		e.X, e.Y, e.Size/2, HexColor(NodeColor(e.Index)))
	if r.labels {
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f">%s</text>`+"\n",
			e.X, e.Y, labelSize(e.Size), html.EscapeString(e.Name))
	}
	buf.WriteString("  </g>\n")
}

// labelSize scales the label with the node so small back nodes stay legible
// relative to their disc.
func labelSize(nodeSize float64) float64 {
	return max(6, nodeSize*0.22)
}
