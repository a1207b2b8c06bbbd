package sphere

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSphereProperties checks the invariants that must hold for any input,
// not just the reference configuration.
func TestSphereProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	cfg := DefaultConfig()

	properties.Property("normalize lands in (-180, 180] and is idempotent", prop.ForAll(
		func(deg float64) bool {
			a := Normalize(deg)
			return a > -180 && a <= 180 && Normalize(a) == a
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("clamp stays within the limit", prop.ForAll(
		func(v, limit float64) bool {
			c := Clamp(v, limit)
			return c >= -limit && c <= limit
		},
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(0, 100),
	))

	properties.Property("generate yields n positions in range", prop.ForAll(
		func(n int, seed uint64) bool {
			positions := Generate(n, cfg, seeded(seed))
			if len(positions) != n {
				return false
			}
			for _, p := range positions {
				if p.Theta < 0 || p.Theta >= 360 || p.Phi < 0 || p.Phi > 180 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 200),
		gen.UInt64(),
	))

	properties.Property("project is pure and visibility follows depth", prop.ForAll(
		func(seed uint64, pitch, yaw float64) bool {
			positions := Generate(10, cfg, seeded(seed))
			rot := Rotation{X: pitch, Y: yaw}
			a, b := Project(positions, rot, cfg), Project(positions, rot, cfg)
			for i := range a {
				if a[i] != b[i] {
					return false
				}
				if a[i].Visible != (a[i].Z > cfg.Tuning.FadeZoneEnd) {
					return false
				}
				if a[i].Opacity < 0 || a[i].Opacity > 1 {
					return false
				}
				r := math.Sqrt(a[i].X*a[i].X + a[i].Y*a[i].Y + a[i].Z*a[i].Z)
				if math.Abs(r-cfg.SphereRadius) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.Float64Range(-180, 180),
		gen.Float64Range(-180, 180),
	))

	properties.Property("collision never increases scale", prop.ForAll(
		func(xs, ys, scales []float64) bool {
			nodes := make([]Node, len(xs))
			for i := range nodes {
				nodes[i] = Node{Index: i, X: xs[i], Y: ys[i], Scale: scales[i], Visible: i%4 != 0}
			}
			for i, n := range Resolve(nodes, cfg) {
				if n.Scale > nodes[i].Scale {
					return false
				}
				if !nodes[i].Visible && n.Scale != nodes[i].Scale {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.Float64Range(-200, 200)),
		gen.SliceOfN(12, gen.Float64Range(-200, 200)),
		gen.SliceOfN(12, gen.Float64Range(0.1, 1.2)),
	))

	properties.Property("motion keeps rotation normalized", prop.ForAll(
		func(moves []float64) bool {
			m := NewMotion(cfg)
			m.Press(0, 0)
			x, y := 0.0, 0.0
			for i, d := range moves {
				if i%2 == 0 {
					x += d
				} else {
					y += d
				}
				m.Move(x, y)
				if v := m.Velocity(); math.Abs(v.X) > cfg.MaxRotationSpeed || math.Abs(v.Y) > cfg.MaxRotationSpeed {
					return false
				}
			}
			m.Release()
			for range 50 {
				m.Step()
			}
			r := m.Rotation()
			return r.X > -180 && r.X <= 180 && r.Y > -180 && r.Y <= 180
		},
		gen.SliceOf(gen.Float64Range(-500, 500)),
	))

	properties.TestingRun(t)
}
