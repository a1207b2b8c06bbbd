// Package pipeline renders sphere grid scenes offline.
//
// The pipeline has two stages:
//
//  1. Simulate: run a widget on a headless host for a number of frames,
//     replaying a scripted gesture, and capture the final frame
//  2. Render: write the frame in the requested formats (SVG, JSON, PNG, WebP)
//
// Both stages are cached by content: the frame by a hash of everything that
// determines it, the artifacts by the frame hash plus render options. The CLI
// render command and the server snapshot endpoint both go through [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seed:    42,
//	    Ticks:   60,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spheregrid/pkg/cache"
	"github.com/matzehuels/spheregrid/pkg/errors"
	sceneio "github.com/matzehuels/spheregrid/pkg/io"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSeed is the default layout seed for reproducible snapshots.
	DefaultSeed = uint64(42)

	// DefaultScale is the default raster scale factor.
	DefaultScale = 1.0

	// MaxTicks bounds how many frames one snapshot may simulate.
	MaxTicks = 10_000

	// MaxSize bounds the container edge in pixels.
	MaxSize = 4096.0

	// MaxScale bounds the raster scale factor.
	MaxScale = 8.0

	// MaxPixels bounds the pixel count of one PNG or WebP output
	// (width*scale x height*scale), i.e. 64 MiB of RGBA.
	MaxPixels = 4096 * 4096

	// Mount is the container id the pipeline renders into.
	Mount = "sphere-grid-container"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatWebP: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatPNG:  "image/png",
	FormatWebP: "image/webp",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scene options
	Config  *sphere.Config `json:"config,omitempty"` // nil means sphere.DefaultConfig
	Items   []sphere.Item  `json:"items,omitempty"`  // nil means sphere.DefaultItems
	Seed    uint64         `json:"seed,omitempty"`
	Width   float64        `json:"width,omitempty"`
	Height  float64        `json:"height,omitempty"`
	Ticks   int            `json:"ticks,omitempty"`
	Gesture []sceneio.Step `json:"gesture,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Background string   `json:"background,omitempty"`
	NoLabels   bool     `json:"no_labels,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// OptionsFromScene builds options for a scene file.
func OptionsFromScene(s sceneio.Scene) Options {
	cfg := s.Widget
	return Options{
		Config:  &cfg,
		Items:   s.Items,
		Seed:    s.Seed,
		Width:   s.Width,
		Height:  s.Height,
		Ticks:   s.Ticks,
		Gesture: s.Gesture,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frame is the captured final frame.
	Frame render.Frame

	// Rotation is the sphere orientation after the last frame.
	Rotation sphere.Rotation

	// SceneHash identifies everything that determined the frame.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items        int
	Visible      int
	Ticks        int
	SimulateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FrameHit  bool // Whether the frame came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, png, webp)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetSceneDefaults()
	o.SetRenderDefaults()

	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := sceneio.ValidateItems(o.Items); err != nil {
		return err
	}
	if !finite(o.Width) || !finite(o.Height) || o.Width > MaxSize || o.Height > MaxSize || o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size %gx%g out of range (max %g)", o.Width, o.Height, MaxSize)
	}
	if !finite(o.Scale) || o.Scale <= 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g out of range (0, %g]", o.Scale, MaxScale)
	}
	if o.Ticks < 0 || o.Ticks > MaxTicks {
		return errors.New(errors.ErrCodeInvalidInput, "ticks %d out of range [0, %d]", o.Ticks, MaxTicks)
	}
	if err := o.validateGesture(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if hasRaster(o.Formats) {
		if err := CheckRasterSize(o.Width, o.Height, o.Scale); err != nil {
			return err
		}
	}
	if _, err := parseBackground(o.Background); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// CheckRasterSize reports whether a width x height frame at scale fits in
// the MaxPixels budget for raster output.
func CheckRasterSize(width, height, scale float64) error {
	w, h := math.Round(width*scale), math.Round(height*scale)
	if !finite(w) || !finite(h) || w*h > MaxPixels {
		return errors.New(errors.ErrCodeInvalidInput,
			"raster output %gx%g exceeds %d pixels; lower the size or scale", w, h, MaxPixels)
	}
	return nil
}

func hasRaster(formats []string) bool {
	for _, f := range formats {
		if f == FormatPNG || f == FormatWebP {
			return true
		}
	}
	return false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (o *Options) validateGesture() error {
	last := 0
	for i, step := range o.Gesture {
		if _, err := step.Event(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidEvent, err, "gesture step %d", i)
		}
		if step.Tick < last || step.Tick >= o.Ticks {
			return errors.New(errors.ErrCodeInvalidEvent,
				"gesture step %d: tick %d must be ordered and below ticks (%d)", i, step.Tick, o.Ticks)
		}
		last = step.Tick
	}
	return nil
}

// SetSceneDefaults fills in the scene defaults.
func (o *Options) SetSceneDefaults() {
	if o.Config == nil {
		cfg := sphere.DefaultConfig()
		o.Config = &cfg
	} else {
		cfg := o.Config.WithDefaults()
		o.Config = &cfg
	}
	if o.Items == nil {
		o.Items = sphere.DefaultItems()
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Width == 0 {
		o.Width = sceneio.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = sceneio.DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// sceneKey is the part of Options that determines the frame.
type sceneKey struct {
	Config  sphere.Config  `json:"config"`
	Items   []sphere.Item  `json:"items"`
	Seed    uint64         `json:"seed"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Ticks   int            `json:"ticks"`
	Gesture []sceneio.Step `json:"gesture"`
}

// SceneHash returns the content hash of everything that determines the frame.
// Call it after ValidateAndSetDefaults.
func (o *Options) SceneHash() (string, error) {
	if o.Config == nil {
		return "", fmt.Errorf("options not validated")
	}
	return cache.HashJSON(sceneKey{
		Config:  *o.Config,
		Items:   o.Items,
		Seed:    o.Seed,
		Width:   o.Width,
		Height:  o.Height,
		Ticks:   o.Ticks,
		Gesture: o.Gesture,
	})
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Scale:      o.Scale,
		Background: o.Background,
		Labels:     !o.NoLabels,
	}
}
