package sink

import (
	"encoding/json"

	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	rotation *sphere.Rotation
	seed     uint64
	hidden   bool
}

// WithJSONRotation records the sphere orientation the frame was taken at.
func WithJSONRotation(r sphere.Rotation) JSONOption {
	return func(j *jsonRenderer) { j.rotation = &r }
}

// WithJSONSeed records the layout seed, enabling reproducible re-rendering.
func WithJSONSeed(seed uint64) JSONOption { return func(j *jsonRenderer) { j.seed = seed } }

// WithJSONHidden keeps hidden elements in the output.
func WithJSONHidden() JSONOption { return func(j *jsonRenderer) { j.hidden = true } }

type jsonOutput struct {
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Tick     int              `json:"tick"`
	Seed     uint64           `json:"seed,omitempty"`
	Rotation *sphere.Rotation `json:"rotation,omitempty"`
	Visible  int              `json:"visible"`
	Elements []render.Element `json:"elements"`
}

// RenderJSON renders f as indented JSON. Elements are listed back to front;
// hidden elements are dropped unless [WithJSONHidden] is given, in which case
// item order is kept instead.
func RenderJSON(f render.Frame, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:    f.Width,
		Height:   f.Height,
		Tick:     f.Tick,
		Seed:     r.seed,
		Rotation: r.rotation,
		Visible:  f.Visible(),
		Elements: f.PaintOrder(),
	}
	if r.hidden {
		out.Elements = f.Elements
	}
	if out.Elements == nil {
		out.Elements = []render.Element{}
	}
	return json.MarshalIndent(out, "", "  ")
}
