package render

import (
	"cmp"
	"slices"
)

// Frame is a captured render of one container.
type Frame struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Tick     int       `json:"tick"`
	Elements []Element `json:"elements"`
}

// Element is one item as it was last styled. X and Y locate the element center
// in container pixels. Size already includes the hover enlargement when
// Hovered is set.
type Element struct {
	Index   int     `json:"index"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Icon    string  `json:"icon,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Opacity float64 `json:"opacity"`
	ZIndex  int     `json:"z_index"`
	Hidden  bool    `json:"hidden,omitempty"`
	Hovered bool    `json:"hovered,omitempty"`
}

// PaintOrder returns the shown elements back to front. Ties keep item order.
func (f Frame) PaintOrder() []Element {
	out := make([]Element, 0, len(f.Elements))
	for _, e := range f.Elements {
		if !e.Hidden && e.Opacity > 0 {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b Element) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
	return out
}

// Visible returns the number of shown elements.
func (f Frame) Visible() int {
	n := 0
	for _, e := range f.Elements {
		if !e.Hidden {
			n++
		}
	}
	return n
}
