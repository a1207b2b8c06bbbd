// Package sink writes captured sphere grid frames to output formats.
//
// Every sink takes a [render.Frame] and draws the shown elements back to
// front, so nodes nearer the viewer cover the ones behind them:
//
//   - [RenderSVG]: one circle plus label per node
//   - [RenderJSON]: the frame with optional rotation and seed metadata
//   - [RenderPNG] and [RenderWebP]: supersampled raster output
//
// Sinks are pure. They never touch the widget or the host that produced the frame.
package sink
