package sphere

import "math"

// Node is one item's projected state for a single frame.
// X and Y are screen offsets from the container center, Z is depth toward the
// viewer. Nodes are recomputed every frame and never stored.
type Node struct {
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Scale   float64 `json:"scale"`
	ZIndex  int     `json:"z_index"`
	Visible bool    `json:"visible"`
	Opacity float64 `json:"opacity"`
}

// Project rotates positions by rot and derives one Node per position.
// It is a pure function: identical inputs always produce identical output.
//
// Yaw (rot.Y) is applied before pitch (rot.X); the order matters.
func Project(positions []Position, rot Rotation, cfg Config) []Node {
	cfg = cfg.WithDefaults()
	t := cfg.Tuning
	radius := cfg.SphereRadius

	sinY, cosY := math.Sincos(radians(rot.Y))
	sinX, cosX := math.Sincos(radians(rot.X))

	nodes := make([]Node, len(positions))
	for i, p := range positions {
		sinT, cosT := math.Sincos(radians(p.Theta))
		sinP, cosP := math.Sincos(radians(p.Phi))

		x := p.Radius * sinP * cosT
		y := p.Radius * cosP
		z := p.Radius * sinP * sinT

		x, z = x*cosY+z*sinY, -x*sinY+z*cosY
		y, z = y*cosX-z*sinX, y*sinX+z*cosX

		nodes[i] = Node{
			Index:   i,
			X:       x,
			Y:       y,
			Z:       z,
			Scale:   nodeScale(x, y, z, p.Phi, radius, t),
			ZIndex:  int(math.Round(1000 + z)),
			Visible: z > t.FadeZoneEnd,
			Opacity: fadeOpacity(z, t),
		}
	}
	return nodes
}

// fadeOpacity is 1 in front of the fade zone, 0 behind it and linear inside.
func fadeOpacity(z float64, t Tuning) float64 {
	if z > t.FadeZoneStart {
		return 1
	}
	return max(0, (z-t.FadeZoneEnd)/(t.FadeZoneStart-t.FadeZoneEnd))
}

// nodeScale shrinks nodes away from the center of the disc and toward the back.
// Nodes that started near a pole are penalized less so they stay readable.
func nodeScale(x, y, z, phi, radius float64, t Tuning) float64 {
	penalty := t.EquatorPenalty
	if phi < t.PoleZone || phi > 180-t.PoleZone {
		penalty = t.PolePenalty
	}
	ratio := min(math.Hypot(x, y)/radius, 1)
	center := max(0.3, 1-ratio*penalty)
	depth := (z + radius) / (2 * radius)
	return center * max(0.5, 0.8+depth*0.3)
}
