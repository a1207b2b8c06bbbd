package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Host is a retained in-memory host.
type Host struct {
	loop sync.Mutex // serializes widget callbacks

	mu         sync.Mutex // guards everything below
	containers map[string]*Container
	document   registry
	frames     []*frameRequest
	tick       int
	pointer    *sphere.Point
}

var _ sphere.Host = (*Host)(nil)

// New creates an empty host.
func New() *Host {
	return &Host{containers: make(map[string]*Container)}
}

// Mount registers a container of the given size under id, replacing any
// previous container with that id.
func (h *Host) Mount(id string, width, height float64) *Container {
	c := &Container{
		host:    h,
		id:      id,
		box:     sphere.Rect{Width: width, Height: height},
		laidOut: true,
	}
	h.mu.Lock()
	h.containers[id] = c
	h.mu.Unlock()
	return c
}

// Lookup implements [sphere.Host].
func (h *Host) Lookup(mount string) (sphere.Container, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[mount]
	if !ok {
		return nil, false
	}
	return c, true
}

// Listen implements [sphere.Host] for document-wide events.
func (h *Host) Listen(t sphere.EventType, fn sphere.Handler) sphere.Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.document.add(h, t, fn)
}

// RequestFrame implements [sphere.Host]. The callback runs on the next Step.
func (h *Host) RequestFrame(fn func()) sphere.FrameRequest {
	f := &frameRequest{host: h, fn: fn}
	h.mu.Lock()
	h.frames = append(h.frames, f)
	h.mu.Unlock()
	return f
}

// Step runs every frame callback that was pending when it was called and
// returns how many ran. Callbacks requested during the step wait for the next one.
func (h *Host) Step() int {
	h.loop.Lock()
	defer h.loop.Unlock()

	h.mu.Lock()
	pending := h.frames
	h.frames = nil
	h.tick++
	h.mu.Unlock()

	ran := 0
	for _, f := range pending {
		if f.take() {
			f.fn()
			ran++
		}
	}
	return ran
}

// Run calls Step every interval until ctx is done.
func (h *Host) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.Step()
		}
	}
}

// Do runs fn on the callback loop.
func (h *Host) Do(fn func()) {
	h.loop.Lock()
	defer h.loop.Unlock()
	fn()
}

// Dispatch delivers e as if it targeted the container registered under mount:
// container listeners first, then document listeners. An unknown mount only
// reaches the document. Pointer moves also update hover tracking.
func (h *Host) Dispatch(mount string, e sphere.Event) {
	h.loop.Lock()
	defer h.loop.Unlock()

	h.mu.Lock()
	h.trackPointer(e)
	var handlers []sphere.Handler
	if c, ok := h.containers[mount]; ok {
		handlers = c.listeners.match(e.Type)
	}
	handlers = append(handlers, h.document.match(e.Type)...)
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(e)
	}
}

func (h *Host) trackPointer(e sphere.Event) {
	switch e.Type {
	case sphere.EventPointerMove, sphere.EventPointerDown:
		h.pointer = &sphere.Point{X: e.X, Y: e.Y}
	case sphere.EventPointerLeave, sphere.EventTouchEnd:
		h.pointer = nil
	case sphere.EventTouchStart, sphere.EventTouchMove:
		if p, ok := e.Primary(); ok {
			h.pointer = &p
		}
	}
}

// Tick returns how many times Step has run.
func (h *Host) Tick() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tick
}

// Pending returns the number of frame callbacks waiting for the next Step.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, f := range h.frames {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// Listeners returns the number of attached listeners across the document and
// every container.
func (h *Host) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.document.handlers)
	for _, c := range h.containers {
		n += len(c.listeners.handlers)
	}
	return n
}

// Snapshot captures the container registered under mount.
func (h *Host) Snapshot(mount string) (render.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[mount]
	if !ok {
		return render.Frame{}, false
	}
	return c.snapshot(h.tick, h.pointer), true
}

type frameRequest struct {
	host      *Host
	fn        func()
	cancelled bool
	done      bool
}

func (f *frameRequest) Cancel() {
	f.host.mu.Lock()
	f.cancelled = true
	f.host.mu.Unlock()
}

// take marks f as run unless it was cancelled.
func (f *frameRequest) take() bool {
	f.host.mu.Lock()
	defer f.host.mu.Unlock()
	if f.cancelled || f.done {
		return false
	}
	f.done = true
	return true
}
