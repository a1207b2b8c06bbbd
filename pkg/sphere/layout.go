package sphere

import (
	"math"
	"math/rand/v2"
)

// Position is an item's static place on the sphere.
// Theta is the azimuth in [0, 360) and Phi the inclination from the vertical
// axis in [0, 180], both in degrees.
type Position struct {
	Theta  float64 `json:"theta"`
	Phi    float64 `json:"phi"`
	Radius float64 `json:"radius"`
}

// goldenAngle is the Fibonacci-sphere azimuth increment, 2π/φ.
var goldenAngle = 2 * math.Pi / ((1 + math.Sqrt(5)) / 2)

// Generate returns n well-separated positions on a sphere of cfg.SphereRadius.
//
// The base set is a Fibonacci sphere. Inclinations away from the equator are
// then pushed further toward their pole to make up for how sparse poles look
// once projected, the result is squeezed into the visible band
// [BandMin, BandMax], and finally both angles get a small uniform jitter drawn
// from rng. Output order matches item order.
//
// A nil rng uses a randomly seeded source.
func Generate(n int, cfg Config, rng *rand.Rand) []Position {
	if n <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cfg = cfg.WithDefaults()
	t := cfg.Tuning

	positions := make([]Position, n)
	for i := range n {
		theta, phi := fibonacciPoint(i, n)
		phi = remapBand(poleAdjust(phi, t), t)

		theta = wrap360(theta + (rng.Float64()-0.5)*2*t.ThetaJitter)
		phi = max(0, min(180, phi+(rng.Float64()-0.5)*2*t.PhiJitter))

		positions[i] = Position{Theta: theta, Phi: phi, Radius: cfg.SphereRadius}
	}
	return positions
}

// fibonacciPoint returns the unadjusted azimuth and inclination in degrees of
// point i out of n.
func fibonacciPoint(i, n int) (theta, phi float64) {
	t := float64(i) / float64(n)
	phi = degrees(math.Acos(1 - 2*t))
	theta = math.Mod(degrees(goldenAngle*float64(i)), 360)
	return theta, phi
}

// poleAdjust pushes an inclination toward its nearer pole. The push grows with
// the distance from the equator and is clamped to [PoleClampMin, PoleClampMax].
func poleAdjust(phi float64, t Tuning) float64 {
	bonus := t.PoleBonus * math.Pow(math.Abs(phi-90)/90, t.PoleExponent)
	if phi < 90 {
		return max(t.PoleClampMin, phi-bonus)
	}
	return min(t.PoleClampMax, phi+bonus)
}

// remapBand maps an inclination from [0, 180] into [BandMin, BandMax].
func remapBand(phi float64, t Tuning) float64 {
	return t.BandMin + (phi/180)*(t.BandMax-t.BandMin)
}
