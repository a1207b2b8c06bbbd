package memory

import "github.com/matzehuels/spheregrid/pkg/sphere"

type handler struct {
	id  uint64
	typ sphere.EventType
	fn  sphere.Handler
}

// registry holds handlers in attach order. Callers hold the host lock.
type registry struct {
	handlers []handler
	nextID   uint64
}

func (r *registry) add(h *Host, t sphere.EventType, fn sphere.Handler) sphere.Listener {
	r.nextID++
	r.handlers = append(r.handlers, handler{id: r.nextID, typ: t, fn: fn})
	return &listener{host: h, reg: r, id: r.nextID}
}

func (r *registry) remove(id uint64) {
	for i, h := range r.handlers {
		if h.id == id {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			return
		}
	}
}

func (r *registry) match(t sphere.EventType) []sphere.Handler {
	var out []sphere.Handler
	for _, h := range r.handlers {
		if h.typ == t {
			out = append(out, h.fn)
		}
	}
	return out
}

// listener removes exactly the handler it was returned for.
type listener struct {
	host *Host
	reg  *registry
	id   uint64
}

func (l *listener) Detach() {
	l.host.mu.Lock()
	defer l.host.mu.Unlock()
	l.reg.remove(l.id)
}
