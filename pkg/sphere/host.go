package sphere

// EventType identifies a pointer or touch event.
type EventType int

// Supported event types.
const (
	EventPointerDown EventType = iota
	EventPointerMove
	EventPointerUp
	EventPointerLeave
	EventTouchStart
	EventTouchMove
	EventTouchEnd
)

var eventNames = [...]string{
	EventPointerDown:  "pointerdown",
	EventPointerMove:  "pointermove",
	EventPointerUp:    "pointerup",
	EventPointerLeave: "pointerleave",
	EventTouchStart:   "touchstart",
	EventTouchMove:    "touchmove",
	EventTouchEnd:     "touchend",
}

// String returns the DOM-style event name.
func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[t]
}

// IsTouch reports whether t is a touch event.
func (t EventType) IsTouch() bool {
	return t == EventTouchStart || t == EventTouchMove || t == EventTouchEnd
}

// ParseEventType maps a DOM-style event name back to its EventType.
func ParseEventType(s string) (EventType, bool) {
	for i, name := range eventNames {
		if name == s {
			return EventType(i), true
		}
	}
	return 0, false
}

// Point is a position in container pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is a pointer or touch event. Pointer events use X and Y; touch events
// carry the active touches, of which only the first is tracked.
type Event struct {
	Type    EventType
	X, Y    float64
	Touches []Point
}

// Primary returns the tracked coordinate of e. For touch events that is the
// first touch; ok is false when a touch event carries no touches.
func (e Event) Primary() (p Point, ok bool) {
	if e.Type.IsTouch() {
		if len(e.Touches) == 0 {
			return Point{}, false
		}
		return e.Touches[0], true
	}
	return Point{X: e.X, Y: e.Y}, true
}

// Handler receives events from a host.
type Handler func(Event)

// Listener is an attached event handler. Detach removes exactly that handler.
type Listener interface {
	Detach()
}

// FrameRequest is a scheduled frame callback that has not run yet.
type FrameRequest interface {
	Cancel()
}

// Rect is a container's bounding box.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Style is everything the render loop writes to a node's visual representation.
// Left and Top locate the node center inside the container. When Hidden is
// set the other fields are not meaningful.
type Style struct {
	Hidden     bool
	Left       float64
	Top        float64
	Size       float64
	Opacity    float64
	ZIndex     int
	HoverScale float64 // enlargement the host applies while the pointer is over the node
}

// Element is one node's visual representation.
type Element interface {
	Apply(Style)
	Remove()
}

// Container is the mount point the widget renders into.
type Container interface {
	// Bounds returns the current bounding box; ok is false while no layout exists
	// yet, and the Rect is then ignored.
	Bounds() (r Rect, ok bool)

	// Append creates the element for items[index].
	Append(index int, item Item) Element

	// Listen attaches h for events targeting the container.
	Listen(t EventType, h Handler) Listener
}

// Host is the environment a widget runs in.
type Host interface {
	// Lookup finds a mount point by id.
	Lookup(mount string) (Container, bool)

	// Listen attaches h for document-wide events.
	Listen(t EventType, h Handler) Listener

	// RequestFrame schedules fn to run once before the next repaint.
	RequestFrame(fn func()) FrameRequest
}
