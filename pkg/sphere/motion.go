package sphere

import "math"

// Motion is the input and momentum controller.
//
// It is a two-state machine. Idle: no pointer is held, and every [Motion.Step]
// decays the velocity and applies it (plus autorotation) to the rotation.
// Dragging: a pointer or single touch is held, [Motion.Move] rotates directly
// and records the last delta as velocity so that releasing throws the sphere.
//
// All angle updates are clamped to MaxRotationSpeed and then normalized into
// (-180, 180], whether they come from a drag or from momentum.
type Motion struct {
	cfg      Config
	rotation Rotation
	velocity Velocity
	dragging bool
	lastX    float64
	lastY    float64
}

// NewMotion creates an idle controller at the configured initial rotation.
func NewMotion(cfg Config) *Motion {
	cfg = cfg.WithDefaults()
	return &Motion{
		cfg: cfg,
		rotation: Rotation{
			X: Normalize(cfg.InitialRotationX),
			Y: Normalize(cfg.InitialRotationY),
		},
	}
}

// Rotation returns the current orientation.
func (m *Motion) Rotation() Rotation { return m.rotation }

// Velocity returns the current angular velocity.
func (m *Motion) Velocity() Velocity { return m.velocity }

// Dragging reports whether a pointer is currently held.
func (m *Motion) Dragging() bool { return m.dragging }

// Press starts a drag at (x, y). Velocity resets so a new gesture starts from rest.
func (m *Motion) Press(x, y float64) {
	m.dragging = true
	m.velocity = Velocity{}
	m.lastX, m.lastY = x, y
}

// Move rotates by the pointer delta since the last recorded position.
// Vertical movement drives pitch (inverted) and horizontal movement drives yaw.
// Moves while idle are ignored.
func (m *Motion) Move(x, y float64) {
	if !m.dragging {
		return
	}
	dx, dy := x-m.lastX, y-m.lastY
	delta := Velocity{
		X: m.clamp(-dy * m.cfg.DragSensitivity),
		Y: m.clamp(dx * m.cfg.DragSensitivity),
	}
	m.rotation.X = Normalize(m.rotation.X + delta.X)
	m.rotation.Y = Normalize(m.rotation.Y + delta.Y)
	m.velocity = delta
	m.lastX, m.lastY = x, y
}

// Release ends a drag. The last drag delta stays as velocity.
func (m *Motion) Release() {
	m.dragging = false
}

// Step advances momentum by one frame. It does nothing while dragging since
// the drag itself drives rotation then.
func (m *Motion) Step() {
	if m.dragging {
		return
	}
	m.velocity.X *= m.cfg.MomentumDecay
	m.velocity.Y *= m.cfg.MomentumDecay

	stop := m.cfg.Tuning.StopThreshold
	if !m.cfg.AutoRotate && math.Abs(m.velocity.X) < stop && math.Abs(m.velocity.Y) < stop {
		m.velocity = Velocity{}
	}

	yaw := m.rotation.Y
	if m.cfg.AutoRotate {
		yaw += m.cfg.AutoRotateSpeed
	}
	yaw += m.clamp(m.velocity.Y)

	m.rotation.X = Normalize(m.rotation.X + m.clamp(m.velocity.X))
	m.rotation.Y = Normalize(yaw)
}

func (m *Motion) clamp(v float64) float64 {
	return Clamp(v, m.cfg.MaxRotationSpeed)
}
