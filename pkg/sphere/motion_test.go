package sphere

import (
	"math"
	"testing"
)

func TestMotionInitialRotation(t *testing.T) {
	m := NewMotion(DefaultConfig())
	if got := m.Rotation(); got != (Rotation{X: 15, Y: 15}) {
		t.Errorf("initial rotation = %+v, want {15 15}", got)
	}

	cfg := DefaultConfig()
	cfg.InitialRotationX = 270
	cfg.InitialRotationY = math.NaN()
	m = NewMotion(cfg)
	if got := m.Rotation(); got != (Rotation{X: -90, Y: 0}) {
		t.Errorf("normalized initial rotation = %+v, want {-90 0}", got)
	}
}

func TestMotionAutoRotateTick(t *testing.T) {
	m := NewMotion(DefaultConfig())
	m.Step()

	r := m.Rotation()
	if r.X != 15 {
		t.Errorf("X = %v, want 15", r.X)
	}
	if !approx(r.Y, 15.3) {
		t.Errorf("Y = %v, want 15.3", r.Y)
	}
}

func TestMotionDrag(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point
		wantRot  Rotation
		wantVel  Velocity
	}{
		{
			name:    "HorizontalClamped",
			from:    Point{100, 100},
			to:      Point{150, 100},
			wantRot: Rotation{X: 15, Y: 20},
			wantVel: Velocity{X: 0, Y: 5},
		},
		{
			name:    "HorizontalSmall",
			from:    Point{100, 100},
			to:      Point{104, 100},
			wantRot: Rotation{X: 15, Y: 17},
			wantVel: Velocity{X: 0, Y: 2},
		},
		{
			name:    "UpwardPitchesUp",
			from:    Point{100, 100},
			to:      Point{100, 96},
			wantRot: Rotation{X: 17, Y: 15},
			wantVel: Velocity{X: 2, Y: 0},
		},
		{
			name:    "DownwardClamped",
			from:    Point{100, 100},
			to:      Point{100, 300},
			wantRot: Rotation{X: 10, Y: 15},
			wantVel: Velocity{X: -5, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMotion(DefaultConfig())
			m.Press(tt.from.X, tt.from.Y)
			m.Move(tt.to.X, tt.to.Y)

			if got := m.Rotation(); !approx(got.X, tt.wantRot.X) || !approx(got.Y, tt.wantRot.Y) {
				t.Errorf("rotation = %+v, want %+v", got, tt.wantRot)
			}
			if got := m.Velocity(); !approx(got.X, tt.wantVel.X) || !approx(got.Y, tt.wantVel.Y) {
				t.Errorf("velocity = %+v, want %+v", got, tt.wantVel)
			}
		})
	}
}

func TestMotionDragWrapsAround(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialRotationY = 178
	m := NewMotion(cfg)

	m.Press(0, 0)
	m.Move(10, 0)
	if got := m.Rotation().Y; !approx(got, -177) {
		t.Errorf("Y = %v, want -177", got)
	}
}

func TestMotionMomentumDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoRotate = false
	m := NewMotion(cfg)

	m.Press(0, 0)
	m.Move(4, 0)
	m.Release()

	want := m.Velocity().Y
	if want != 2 {
		t.Fatalf("thrown velocity = %v, want 2", want)
	}

	stopped := false
	for k := 1; k <= 200; k++ {
		m.Step()
		want *= cfg.MomentumDecay
		got := m.Velocity().Y

		if want < cfg.Tuning.StopThreshold {
			if got != 0 {
				t.Fatalf("tick %d: velocity = %v, want exactly 0 below the stop threshold", k, got)
			}
			stopped = true
			break
		}
		if got != want {
			t.Fatalf("tick %d: velocity = %v, want %v", k, got, want)
		}
	}
	if !stopped {
		t.Fatal("velocity never reached zero")
	}

	before := m.Rotation()
	m.Step()
	if m.Rotation() != before {
		t.Errorf("rotation changed at rest without autorotate: %+v -> %+v", before, m.Rotation())
	}
}

func TestMotionAutoRotateKeepsVelocity(t *testing.T) {
	m := NewMotion(DefaultConfig())
	m.Press(0, 0)
	m.Move(0.01, 0)
	m.Release()

	for range 500 {
		m.Step()
	}
	// With autorotation on, tiny velocities decay but are never snapped to zero.
	if v := m.Velocity().Y; v <= 0 {
		t.Errorf("velocity = %v, want a small positive remainder", v)
	}
}

func TestMotionStepWhileDragging(t *testing.T) {
	m := NewMotion(DefaultConfig())
	m.Press(0, 0)
	m.Move(4, 0)

	before, vel := m.Rotation(), m.Velocity()
	m.Step()
	if m.Rotation() != before || m.Velocity() != vel {
		t.Error("Step should not touch rotation or velocity while dragging")
	}
}

func TestMotionPressResetsVelocity(t *testing.T) {
	m := NewMotion(DefaultConfig())
	m.Press(0, 0)
	m.Move(4, 4)
	m.Release()
	if m.Velocity() == (Velocity{}) {
		t.Fatal("expected a thrown velocity")
	}

	m.Press(10, 10)
	if m.Velocity() != (Velocity{}) {
		t.Errorf("velocity after press = %+v, want zero", m.Velocity())
	}
	if !m.Dragging() {
		t.Error("Dragging() = false after press")
	}
}

func TestMotionMoveWhileIdle(t *testing.T) {
	m := NewMotion(DefaultConfig())
	before := m.Rotation()
	m.Move(500, 500)
	if m.Rotation() != before {
		t.Errorf("idle move rotated the sphere: %+v", m.Rotation())
	}
}
