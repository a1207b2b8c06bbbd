package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/spheregrid/pkg/errors"
	"github.com/matzehuels/spheregrid/pkg/host/memory"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// instance is one live widget with its own host and frame loop.
type instance struct {
	id        string
	host      *memory.Host
	widget    *sphere.Widget
	createdAt time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	expiresAt time.Time
}

func newInstance(host *memory.Host, w *sphere.Widget, ttl time.Duration) *instance {
	now := time.Now()
	return &instance{
		id:        uuid.NewString(),
		host:      host,
		widget:    w,
		createdAt: now,
		expiresAt: now.Add(ttl),
		done:      make(chan struct{}),
	}
}

// start initializes the widget and runs its frame loop until stop.
func (in *instance) start(ctx context.Context, interval time.Duration) {
	in.host.Do(in.widget.Initialize)
	ctx, in.cancel = context.WithCancel(ctx)
	go func() {
		defer close(in.done)
		_ = in.host.Run(ctx, interval)
	}()
}

// stop ends the frame loop and tears the widget down. Safe to call twice.
func (in *instance) stop() {
	if in.cancel != nil {
		in.cancel()
		<-in.done
	}
	in.host.Do(in.widget.Teardown)
}

func (in *instance) touch(ttl time.Duration) {
	in.mu.Lock()
	in.expiresAt = time.Now().Add(ttl)
	in.mu.Unlock()
}

func (in *instance) expired(now time.Time) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return now.After(in.expiresAt)
}

// snapshot captures the current frame and rotation from the same tick.
func (in *instance) snapshot() (render.Frame, sphere.Rotation) {
	var (
		frame render.Frame
		rot   sphere.Rotation
	)
	in.host.Do(func() {
		rot = in.widget.Rotation()
		frame, _ = in.host.Snapshot(pipeline.Mount)
	})
	return frame, rot
}

// state describes an instance for the API.
type state struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Tick      int             `json:"tick"`
	Rotation  sphere.Rotation `json:"rotation"`
	Velocity  sphere.Velocity `json:"velocity"`
	Dragging  bool            `json:"dragging"`
	Items     int             `json:"items"`
	Visible   int             `json:"visible"`
	Config    sphere.Config   `json:"config"`
}

func (in *instance) state() state {
	s := state{ID: in.id, CreatedAt: in.createdAt}
	in.mu.Lock()
	s.ExpiresAt = in.expiresAt
	in.mu.Unlock()

	in.host.Do(func() {
		s.Tick = in.host.Tick()
		s.Rotation = in.widget.Rotation()
		s.Velocity = in.widget.Velocity()
		s.Dragging = in.widget.Dragging()
		s.Config = in.widget.Config()
		s.Items = len(in.widget.Items())
		for _, n := range in.widget.Nodes() {
			if n.Visible {
				s.Visible++
			}
		}
	})
	return s
}

// store tracks live instances. Lookups extend an instance's lifetime.
type store struct {
	mu    sync.Mutex
	items map[string]*instance
	ttl   time.Duration
	max   int
}

func newStore(ttl time.Duration, max int) *store {
	return &store{items: make(map[string]*instance), ttl: ttl, max: max}
}

func (s *store) add(in *instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.items) >= s.max {
		return errors.New(errors.ErrCodeUnavailable, "instance limit reached (%d)", s.max)
	}
	s.items[in.id] = in
	return nil
}

func (s *store) get(id string) (*instance, error) {
	s.mu.Lock()
	in, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeWidgetNotFound, "widget %q not found", id)
	}
	in.touch(s.ttl)
	return in, nil
}

func (s *store) remove(id string) (*instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.items[id]
	delete(s.items, id)
	return in, ok
}

// cleanup removes and returns the instances that expired before now.
func (s *store) cleanup(now time.Time) []*instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*instance
	for id, in := range s.items {
		if in.expired(now) {
			delete(s.items, id)
			out = append(out, in)
		}
	}
	return out
}

// drain removes and returns every instance.
func (s *store) drain() []*instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*instance, 0, len(s.items))
	for id, in := range s.items {
		delete(s.items, id)
		out = append(out, in)
	}
	return out
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
