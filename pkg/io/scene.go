package io

import (
	"slices"

	"github.com/matzehuels/spheregrid/pkg/errors"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Default scene dimensions.
const (
	DefaultWidth  = 400.0
	DefaultHeight = 400.0
	DefaultTicks  = 60
)

// Scene is a reproducible widget setup.
type Scene struct {
	Seed    uint64        `json:"seed" toml:"seed" yaml:"seed"`
	Width   float64       `json:"width" toml:"width" yaml:"width"`
	Height  float64       `json:"height" toml:"height" yaml:"height"`
	Ticks   int           `json:"ticks" toml:"ticks" yaml:"ticks"`
	Widget  sphere.Config `json:"widget" toml:"widget" yaml:"widget"`
	Items   []sphere.Item `json:"items" toml:"items" yaml:"items"`
	Gesture []Step        `json:"gesture,omitempty" toml:"gesture,omitempty" yaml:"gesture,omitempty"`
}

// Step is one scripted input event, delivered before frame Tick runs.
// Touch steps carry a single touch at (X, Y).
type Step struct {
	Tick int     `json:"tick" toml:"tick" yaml:"tick"`
	Type string  `json:"type" toml:"type" yaml:"type"`
	X    float64 `json:"x" toml:"x" yaml:"x"`
	Y    float64 `json:"y" toml:"y" yaml:"y"`
}

// DefaultScene returns the scene every file is decoded on top of.
func DefaultScene() Scene {
	return Scene{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Ticks:  DefaultTicks,
		Widget: sphere.DefaultConfig(),
	}
}

// Event converts s into a widget event.
func (s Step) Event() (sphere.Event, error) {
	t, ok := sphere.ParseEventType(s.Type)
	if !ok {
		return sphere.Event{}, errors.New(errors.ErrCodeInvalidEvent, "unknown event type %q", s.Type)
	}
	e := sphere.Event{Type: t, X: s.X, Y: s.Y}
	if t.IsTouch() && t != sphere.EventTouchEnd {
		e.Touches = []sphere.Point{{X: s.X, Y: s.Y}}
	}
	return e, nil
}

// Validate checks the scene for values no widget could run with.
func (s Scene) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size must not be negative (got %gx%g)", s.Width, s.Height)
	}
	if s.Ticks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ticks must not be negative (got %d)", s.Ticks)
	}
	if err := s.Widget.WithDefaults().Validate(); err != nil {
		return err
	}
	if err := ValidateItems(s.Items); err != nil {
		return err
	}
	for i, step := range s.Gesture {
		if _, err := step.Event(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidEvent, err, "gesture step %d", i)
		}
		if step.Tick < 0 {
			return errors.New(errors.ErrCodeInvalidEvent, "gesture step %d: negative tick", i)
		}
	}
	if !slices.IsSortedFunc(s.Gesture, func(a, b Step) int { return a.Tick - b.Tick }) {
		return errors.New(errors.ErrCodeInvalidEvent, "gesture steps must be ordered by tick")
	}
	return nil
}

// ValidateItems checks ids and names and rejects duplicate ids.
func ValidateItems(items []sphere.Item) error {
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "item %d", i)
		}
		if it.Name == "" {
			return errors.New(errors.ErrCodeInvalidInput, "item %q has no name", it.ID)
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
