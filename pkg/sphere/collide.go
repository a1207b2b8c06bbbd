package sphere

import "math"

// Resolve shrinks visible nodes whose rendered footprints overlap.
//
// Every pair is measured against the scales of the input (a snapshot taken
// before any reduction), so the result does not depend on iteration order.
// Each node shrinks to satisfy its worst collision only. Scales never grow, and
// a reduction never takes a node below Tuning.MinScale. Coincident nodes count
// as a full overlap. Invisible nodes are returned unchanged.
//
// The pass is O(N²) and meant for a handful of nodes, not for large N.
func Resolve(nodes []Node, cfg Config) []Node {
	cfg = cfg.WithDefaults()
	t := cfg.Tuning
	base := cfg.BaseNodeSize

	out := make([]Node, len(nodes))
	copy(out, nodes)

	for i, a := range nodes {
		if !a.Visible {
			continue
		}
		factor := 1.0
		for j, b := range nodes {
			if i == j || !b.Visible {
				continue
			}
			minDist := (base*a.Scale+base*b.Scale)/2 + t.CollisionPadding
			dist := math.Hypot(a.X-b.X, a.Y-b.Y)
			if dist >= minDist {
				continue
			}
			overlap := minDist - dist
			factor = min(factor, max(t.MinCollisionFactor, 1-(overlap/minDist)*t.CollisionStrength))
		}
		if factor < 1 {
			// The floor must not lift a node that was already smaller.
			out[i].Scale = min(a.Scale, max(t.MinScale, a.Scale*factor))
		}
	}
	return out
}
