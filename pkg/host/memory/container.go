package memory

import (
	"math"

	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Container is a mount point with a fixed box.
type Container struct {
	host      *Host
	id        string
	box       sphere.Rect
	laidOut   bool
	elements  []*element
	listeners registry
}

var _ sphere.Container = (*Container)(nil)

// ID returns the mount id.
func (c *Container) ID() string { return c.id }

// Resize changes the container box. Zero or negative sizes make the box
// unavailable, as if the container had not been laid out yet.
func (c *Container) Resize(width, height float64) {
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	c.box.Width, c.box.Height = width, height
	c.laidOut = width > 0 && height > 0
}

// Bounds implements [sphere.Container].
func (c *Container) Bounds() (sphere.Rect, bool) {
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	if !c.laidOut {
		return sphere.Rect{}, false
	}
	return c.box, true
}

// Append implements [sphere.Container].
func (c *Container) Append(index int, item sphere.Item) sphere.Element {
	el := &element{container: c, index: index, item: item}
	c.host.mu.Lock()
	c.elements = append(c.elements, el)
	c.host.mu.Unlock()
	return el
}

// Listen implements [sphere.Container].
func (c *Container) Listen(t sphere.EventType, fn sphere.Handler) sphere.Listener {
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	return c.listeners.add(c.host, t, fn)
}

// Len returns the number of attached elements.
func (c *Container) Len() int {
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	return len(c.elements)
}

// snapshot builds a frame from the current element styles. Host lock held.
func (c *Container) snapshot(tick int, pointer *sphere.Point) render.Frame {
	f := render.Frame{
		Width:    c.box.Width,
		Height:   c.box.Height,
		Tick:     tick,
		Elements: make([]render.Element, 0, len(c.elements)),
	}

	hovered := -1
	if pointer != nil {
		hovered = c.hitTest(*pointer)
	}

	for i, el := range c.elements {
		s := el.style
		e := render.Element{
			Index:   el.index,
			ID:      el.item.ID,
			Name:    el.item.Name,
			Icon:    el.item.Icon,
			Hidden:  s.Hidden || !el.styled,
			X:       s.Left,
			Y:       s.Top,
			Size:    s.Size,
			Opacity: s.Opacity,
			ZIndex:  s.ZIndex,
		}
		if i == hovered {
			e.Hovered = true
			if s.HoverScale > 0 {
				e.Size *= s.HoverScale
			}
		}
		f.Elements = append(f.Elements, e)
	}
	return f
}

// hitTest returns the position in c.elements of the topmost shown element
// under p, or -1.
func (c *Container) hitTest(p sphere.Point) int {
	hit, best := -1, math.MinInt
	for i, el := range c.elements {
		s := el.style
		if !el.styled || s.Hidden || s.Opacity <= 0 {
			continue
		}
		if math.Hypot(p.X-s.Left, p.Y-s.Top) > s.Size/2 {
			continue
		}
		if s.ZIndex >= best {
			hit, best = i, s.ZIndex
		}
	}
	return hit
}

type element struct {
	container *Container
	index     int
	item      sphere.Item
	style     sphere.Style
	styled    bool
}

func (e *element) Apply(s sphere.Style) {
	e.container.host.mu.Lock()
	defer e.container.host.mu.Unlock()
	if s.Hidden {
		// Hiding leaves the other properties as they were.
		e.style.Hidden = true
	} else {
		e.style = s
	}
	e.styled = true
}

func (e *element) Remove() {
	c := e.container
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	for i, el := range c.elements {
		if el == e {
			c.elements = append(c.elements[:i], c.elements[i+1:]...)
			return
		}
	}
}
