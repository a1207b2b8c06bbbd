package sphere

import (
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/spheregrid/pkg/errors"
)

// Default widget options.
const (
	DefaultSphereRadius     = 180.0
	DefaultDragSensitivity  = 0.5
	DefaultMomentumDecay    = 0.95
	DefaultMaxRotationSpeed = 5.0
	DefaultBaseNodeSize     = 60.0
	DefaultHoverScale       = 1.2
	DefaultAutoRotateSpeed  = 0.3
	DefaultInitialRotation  = 15.0
)

// Config holds the immutable per-instance widget options.
//
// Zero numeric values are replaced by defaults in [Config.WithDefaults], so a
// partially filled Config behaves like the defaults for the omitted fields.
// AutoRotate is the exception: false is meaningful and is kept as is.
type Config struct {
	SphereRadius     float64 `json:"sphere_radius" toml:"sphere_radius" yaml:"sphere_radius" validate:"gt=0"`
	DragSensitivity  float64 `json:"drag_sensitivity" toml:"drag_sensitivity" yaml:"drag_sensitivity" validate:"gt=0"`
	MomentumDecay    float64 `json:"momentum_decay" toml:"momentum_decay" yaml:"momentum_decay" validate:"gt=0,lt=1"`
	MaxRotationSpeed float64 `json:"max_rotation_speed" toml:"max_rotation_speed" yaml:"max_rotation_speed" validate:"gt=0"`
	BaseNodeSize     float64 `json:"base_node_size" toml:"base_node_size" yaml:"base_node_size" validate:"gt=0"`
	HoverScale       float64 `json:"hover_scale" toml:"hover_scale" yaml:"hover_scale" validate:"gte=1"`
	AutoRotate       bool    `json:"auto_rotate" toml:"auto_rotate" yaml:"auto_rotate"`
	AutoRotateSpeed  float64 `json:"auto_rotate_speed" toml:"auto_rotate_speed" yaml:"auto_rotate_speed"`
	InitialRotationX float64 `json:"initial_rotation_x" toml:"initial_rotation_x" yaml:"initial_rotation_x" validate:"gte=-180,lte=180"`
	InitialRotationY float64 `json:"initial_rotation_y" toml:"initial_rotation_y" yaml:"initial_rotation_y" validate:"gte=-180,lte=180"`

	Tuning Tuning `json:"tuning" toml:"tuning" yaml:"tuning"`
}

// Tuning holds the empirically tuned visual constants. They have no derivation;
// the defaults reproduce the reference look and should only be changed together.
type Tuning struct {
	// Layout
	PoleBonus    float64 `json:"pole_bonus" toml:"pole_bonus" yaml:"pole_bonus" validate:"gte=0"`
	PoleExponent float64 `json:"pole_exponent" toml:"pole_exponent" yaml:"pole_exponent" validate:"gt=0"`
	PoleClampMin float64 `json:"pole_clamp_min" toml:"pole_clamp_min" yaml:"pole_clamp_min" validate:"gte=0,lte=90"`
	PoleClampMax float64 `json:"pole_clamp_max" toml:"pole_clamp_max" yaml:"pole_clamp_max" validate:"gte=90,lte=180"`
	BandMin      float64 `json:"band_min" toml:"band_min" yaml:"band_min" validate:"gte=0,lte=180"`
	BandMax      float64 `json:"band_max" toml:"band_max" yaml:"band_max" validate:"gtfield=BandMin,lte=180"`
	ThetaJitter  float64 `json:"theta_jitter" toml:"theta_jitter" yaml:"theta_jitter" validate:"gte=0"`
	PhiJitter    float64 `json:"phi_jitter" toml:"phi_jitter" yaml:"phi_jitter" validate:"gte=0"`

	// Projection
	FadeZoneStart  float64 `json:"fade_zone_start" toml:"fade_zone_start" yaml:"fade_zone_start"`
	FadeZoneEnd    float64 `json:"fade_zone_end" toml:"fade_zone_end" yaml:"fade_zone_end" validate:"ltfield=FadeZoneStart"`
	PoleZone       float64 `json:"pole_zone" toml:"pole_zone" yaml:"pole_zone" validate:"gte=0,lte=90"`
	PolePenalty    float64 `json:"pole_penalty" toml:"pole_penalty" yaml:"pole_penalty" validate:"gte=0,lte=1"`
	EquatorPenalty float64 `json:"equator_penalty" toml:"equator_penalty" yaml:"equator_penalty" validate:"gte=0,lte=1"`

	// Collision
	CollisionPadding   float64 `json:"collision_padding" toml:"collision_padding" yaml:"collision_padding" validate:"gt=0"`
	MinCollisionFactor float64 `json:"min_collision_factor" toml:"min_collision_factor" yaml:"min_collision_factor" validate:"gt=0,lte=1"`
	CollisionStrength  float64 `json:"collision_strength" toml:"collision_strength" yaml:"collision_strength" validate:"gte=0,lte=1"`
	MinScale           float64 `json:"min_scale" toml:"min_scale" yaml:"min_scale" validate:"gt=0"`

	// Motion
	StopThreshold float64 `json:"stop_threshold" toml:"stop_threshold" yaml:"stop_threshold" validate:"gte=0"`
}

// DefaultTuning returns the reference visual constants.
func DefaultTuning() Tuning {
	return Tuning{
		PoleBonus:    35,
		PoleExponent: 0.6,
		PoleClampMin: 5,
		PoleClampMax: 175,
		BandMin:      15,
		BandMax:      165,
		ThetaJitter:  10,
		PhiJitter:    5,

		FadeZoneStart:  -10,
		FadeZoneEnd:    -30,
		PoleZone:       30,
		PolePenalty:    0.4,
		EquatorPenalty: 0.7,

		CollisionPadding:   25,
		MinCollisionFactor: 0.4,
		CollisionStrength:  0.6,
		MinScale:           0.25,

		StopThreshold: 0.01,
	}
}

// DefaultConfig returns the reference widget configuration with autorotation on.
func DefaultConfig() Config {
	return Config{
		SphereRadius:     DefaultSphereRadius,
		DragSensitivity:  DefaultDragSensitivity,
		MomentumDecay:    DefaultMomentumDecay,
		MaxRotationSpeed: DefaultMaxRotationSpeed,
		BaseNodeSize:     DefaultBaseNodeSize,
		HoverScale:       DefaultHoverScale,
		AutoRotate:       true,
		AutoRotateSpeed:  DefaultAutoRotateSpeed,
		InitialRotationX: DefaultInitialRotation,
		InitialRotationY: DefaultInitialRotation,
		Tuning:           DefaultTuning(),
	}
}

// WithDefaults returns a copy of c with zero numeric fields replaced by their
// defaults. Initial rotation is left alone since zero is a valid angle; the
// fade zone is only defaulted when both bounds are zero.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	orDefault(&c.SphereRadius, d.SphereRadius)
	orDefault(&c.DragSensitivity, d.DragSensitivity)
	orDefault(&c.MomentumDecay, d.MomentumDecay)
	orDefault(&c.MaxRotationSpeed, d.MaxRotationSpeed)
	orDefault(&c.BaseNodeSize, d.BaseNodeSize)
	orDefault(&c.HoverScale, d.HoverScale)
	orDefault(&c.AutoRotateSpeed, d.AutoRotateSpeed)

	t, dt := &c.Tuning, d.Tuning
	orDefault(&t.PoleBonus, dt.PoleBonus)
	orDefault(&t.PoleExponent, dt.PoleExponent)
	orDefault(&t.PoleClampMin, dt.PoleClampMin)
	orDefault(&t.PoleClampMax, dt.PoleClampMax)
	orDefault(&t.BandMin, dt.BandMin)
	orDefault(&t.BandMax, dt.BandMax)
	orDefault(&t.ThetaJitter, dt.ThetaJitter)
	orDefault(&t.PhiJitter, dt.PhiJitter)
	if t.FadeZoneStart == 0 && t.FadeZoneEnd == 0 {
		t.FadeZoneStart, t.FadeZoneEnd = dt.FadeZoneStart, dt.FadeZoneEnd
	}
	orDefault(&t.PoleZone, dt.PoleZone)
	orDefault(&t.PolePenalty, dt.PolePenalty)
	orDefault(&t.EquatorPenalty, dt.EquatorPenalty)
	orDefault(&t.CollisionPadding, dt.CollisionPadding)
	orDefault(&t.MinCollisionFactor, dt.MinCollisionFactor)
	orDefault(&t.CollisionStrength, dt.CollisionStrength)
	orDefault(&t.MinScale, dt.MinScale)
	orDefault(&t.StopThreshold, dt.StopThreshold)
	return c
}

func orDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

var validate = validator.New()

// Validate checks c against its field constraints.
// Call it on the result of [Config.WithDefaults] when the config comes from user input.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid sphere config")
	}
	return nil
}
