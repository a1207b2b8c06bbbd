package sphere

import "math"

// Rotation is the sphere orientation in degrees. X is pitch (about the
// horizontal axis) and Y is yaw (about the vertical axis); roll is always zero.
// Both components stay within (-180, 180].
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Velocity is the angular velocity in degrees per frame.
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Normalize wraps an angle in degrees into (-180, 180].
// Non-finite input is mapped to 0.
func Normalize(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	a := math.Mod(deg, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// Clamp limits v to [-limit, limit].
func Clamp(v, limit float64) float64 {
	return max(-limit, min(limit, v))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// wrap360 maps an angle in degrees into [0, 360).
func wrap360(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
