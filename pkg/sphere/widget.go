package sphere

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spheregrid/pkg/observability"
)

// Option configures a Widget.
type Option func(*Widget)

// WithItems replaces the default technology stack.
func WithItems(items []Item) Option {
	return func(w *Widget) { w.items = append([]Item(nil), items...) }
}

// WithSeed makes the layout jitter reproducible.
func WithSeed(seed uint64) Option {
	return func(w *Widget) { w.rng = rand.New(rand.NewPCG(seed, seed^0x5eed)) }
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// Widget is a sphere grid instance bound to one mount point.
//
// A widget owns its layout, motion state, elements, listeners and pending frame
// request exclusively. It is not safe for concurrent use; see the package docs.
type Widget struct {
	host      Host
	mount     string
	container Container
	cfg       Config
	items     []Item
	rng       *rand.Rand
	logger    *log.Logger

	motion    *Motion
	positions []Position
	elements  []Element
	listeners []Listener
	frame     FrameRequest
	nodes     []Node
	alive     bool
}

// New creates a widget for the container registered under mount.
// A missing mount point is not an error: the widget is inert and every
// operation on it is a no-op.
func New(host Host, mount string, cfg Config, opts ...Option) *Widget {
	cfg = cfg.WithDefaults()
	w := &Widget{
		host:   host,
		mount:  mount,
		cfg:    cfg,
		items:  DefaultItems(),
		logger: log.New(io.Discard),
		motion: NewMotion(cfg),
	}
	for _, opt := range opts {
		opt(w)
	}
	if host != nil {
		w.container, _ = host.Lookup(mount)
	}
	return w
}

// Initialize generates the layout, creates one element per item, attaches the
// input listeners and starts the render loop. It runs the first frame
// synchronously. Calling it on a live or unmounted widget does nothing.
func (w *Widget) Initialize() {
	if w.container == nil {
		w.logger.Debug("mount point not found, sphere grid disabled", "mount", w.mount)
		return
	}
	if w.alive {
		return
	}

	w.positions = Generate(len(w.items), w.cfg, w.rng)
	w.elements = make([]Element, len(w.items))
	for i, item := range w.items {
		w.elements[i] = w.container.Append(i, item)
	}

	w.listeners = []Listener{
		w.container.Listen(EventPointerDown, w.handlePress),
		w.host.Listen(EventPointerMove, w.handleMove),
		w.host.Listen(EventPointerUp, w.handleRelease),
		w.host.Listen(EventPointerLeave, w.handleRelease),
		w.container.Listen(EventTouchStart, w.handlePress),
		w.host.Listen(EventTouchMove, w.handleMove),
		w.host.Listen(EventTouchEnd, w.handleRelease),
	}

	w.alive = true
	w.logger.Debug("sphere grid initialized", "mount", w.mount, "items", len(w.items))
	observability.Widget().OnInitialize(w.mount, len(w.items))

	w.animate()
}

// Teardown stops the render loop, detaches every listener and removes the
// created elements. It is safe to call more than once and on a widget that was
// never initialized.
func (w *Widget) Teardown() {
	if !w.alive {
		return
	}
	w.alive = false

	if w.frame != nil {
		w.frame.Cancel()
		w.frame = nil
	}
	for _, l := range w.listeners {
		l.Detach()
	}
	for _, el := range w.elements {
		el.Remove()
	}
	w.listeners = nil
	w.elements = nil
	w.nodes = nil

	w.logger.Debug("sphere grid torn down", "mount", w.mount)
	observability.Widget().OnTeardown(w.mount)
}

// Mounted reports whether the mount point was found at construction.
func (w *Widget) Mounted() bool { return w.container != nil }

// Alive reports whether the render loop is running.
func (w *Widget) Alive() bool { return w.alive }

// Config returns the effective configuration.
func (w *Widget) Config() Config { return w.cfg }

// Items returns the items in layout order.
func (w *Widget) Items() []Item { return append([]Item(nil), w.items...) }

// Rotation returns the current orientation.
func (w *Widget) Rotation() Rotation { return w.motion.Rotation() }

// Velocity returns the current angular velocity.
func (w *Widget) Velocity() Velocity { return w.motion.Velocity() }

// Dragging reports whether a drag is in progress.
func (w *Widget) Dragging() bool { return w.motion.Dragging() }

// Positions returns a copy of the static layout, or nil before initialization.
func (w *Widget) Positions() []Position { return append([]Position(nil), w.positions...) }

// Nodes returns a copy of the most recent frame's resolved nodes.
func (w *Widget) Nodes() []Node { return append([]Node(nil), w.nodes...) }

// animate runs one frame and schedules the next while the widget is alive.
func (w *Widget) animate() {
	if !w.alive {
		return
	}
	w.frame = nil
	w.tick()
	w.frame = w.host.RequestFrame(w.animate)
}

func (w *Widget) tick() {
	start := time.Now()

	w.motion.Step()
	projected := Project(w.positions, w.motion.Rotation(), w.cfg)
	w.nodes = Resolve(projected, w.cfg)

	// A missing box degrades to a zero-sized one for this frame, whatever
	// the host left in the returned Rect.
	box, ok := w.container.Bounds()
	if !ok {
		box = Rect{}
	}
	cx, cy := box.Width/2, box.Height/2

	visible, shrunk := 0, 0
	for i, n := range w.nodes {
		el := w.elements[i]
		if !n.Visible {
			el.Apply(Style{Hidden: true})
			continue
		}
		visible++
		if n.Scale < projected[i].Scale {
			shrunk++
		}
		el.Apply(Style{
			Left:       cx + n.X,
			Top:        cy + n.Y,
			Size:       w.cfg.BaseNodeSize * n.Scale,
			Opacity:    n.Opacity,
			ZIndex:     n.ZIndex,
			HoverScale: w.cfg.HoverScale,
		})
	}

	observability.Widget().OnFrame(w.mount, time.Since(start), visible, shrunk)
}

func (w *Widget) handlePress(e Event) {
	p, ok := e.Primary()
	if !ok {
		return
	}
	w.motion.Press(p.X, p.Y)
}

func (w *Widget) handleMove(e Event) {
	if !w.motion.Dragging() {
		return
	}
	p, ok := e.Primary()
	if !ok {
		return
	}
	w.motion.Move(p.X, p.Y)
}

func (w *Widget) handleRelease(Event) {
	w.motion.Release()
}
