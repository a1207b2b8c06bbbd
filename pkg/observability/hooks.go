// Package observability lets binaries observe widgets, the render pipeline,
// caches and the HTTP server without those packages importing a metrics
// library.
//
// Emitters call the accessors ([Widget], [Pipeline], [Cache], [HTTP]); a
// binary that wants numbers installs implementations at startup, usually via
// metrics.Registry.Install. Until then every hook is a no-op.
//
//	observability.Widget().OnFrame(mount, elapsed, visible, shrunk)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// WidgetHooks observes sphere grid widgets. OnFrame runs inside the frame
// callback of every widget, so it must not block.
type WidgetHooks interface {
	OnInitialize(mount string, items int)
	OnTeardown(mount string)
	OnFrame(mount string, elapsed time.Duration, visible, shrunk int)
}

// PipelineHooks observes offline simulations and renders.
type PipelineHooks interface {
	OnSimulateStart(ctx context.Context, items, ticks int)
	OnSimulateComplete(ctx context.Context, ticks int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes cache lookups by key type ("frame" or "artifact").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes served requests. Route is the matched pattern, not the
// raw path, to keep label cardinality bounded.
type HTTPHooks interface {
	OnServe(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

type NoopWidgetHooks struct{}

func (NoopWidgetHooks) OnInitialize(string, int)                {}
func (NoopWidgetHooks) OnTeardown(string)                       {}
func (NoopWidgetHooks) OnFrame(string, time.Duration, int, int) {}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSimulateStart(context.Context, int, int)                        {}
func (NoopPipelineHooks) OnSimulateComplete(context.Context, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnServe(context.Context, string, string, int, time.Duration) {}

// slot holds one installed hook. Loads are lock free since OnFrame sits on
// the hot path of every running widget.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

// store installs h; a nil h leaves the current hook in place.
func (s *slot[T]) store(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	widget   = slot[WidgetHooks]{noop: NoopWidgetHooks{}}
	pipeline = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cache    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	http     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

func SetWidgetHooks(h WidgetHooks)     { widget.store(h) }
func SetPipelineHooks(h PipelineHooks) { pipeline.store(h) }
func SetCacheHooks(h CacheHooks)       { cache.store(h) }
func SetHTTPHooks(h HTTPHooks)         { http.store(h) }

func Widget() WidgetHooks     { return widget.load() }
func Pipeline() PipelineHooks { return pipeline.load() }
func Cache() CacheHooks       { return cache.load() }
func HTTP() HTTPHooks         { return http.load() }

// Reset uninstalls every hook. Tests that install hooks defer it.
func Reset() {
	widget.p.Store(nil)
	pipeline.p.Store(nil)
	cache.p.Store(nil)
	http.p.Store(nil)
}
