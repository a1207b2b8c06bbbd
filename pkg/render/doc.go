// Package render holds the host-independent picture of one sphere grid frame.
//
// A [Frame] is what a retained host (see pkg/host/memory) captures after the
// widget has styled its elements: one [Element] per item with its final
// position, size, opacity and stacking order. Output formats live in the
// [sink] subpackage and only ever see a Frame, never the widget itself.
//
//	frame, _ := host.Snapshot("sphere-grid-container")
//	svg := sink.RenderSVG(frame)
package render
