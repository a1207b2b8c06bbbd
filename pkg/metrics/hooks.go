package metrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/spheregrid/pkg/observability"
)

var (
	_ observability.WidgetHooks   = (*Registry)(nil)
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)

// OnInitialize implements observability.WidgetHooks.
func (r *Registry) OnInitialize(mount string, _ int) {
	r.WidgetsTotal.Inc()
	r.WidgetsActive.WithLabelValues(mount).Inc()
}

// OnTeardown implements observability.WidgetHooks.
func (r *Registry) OnTeardown(mount string) {
	r.TeardownsTotal.Inc()
	r.WidgetsActive.WithLabelValues(mount).Dec()
	r.NodesVisible.DeleteLabelValues(mount)
	r.NodesShrunk.DeleteLabelValues(mount)
}

// OnFrame implements observability.WidgetHooks.
func (r *Registry) OnFrame(mount string, elapsed time.Duration, visible, shrunk int) {
	r.FramesTotal.WithLabelValues(mount).Inc()
	r.FrameDuration.Observe(elapsed.Seconds())
	r.NodesVisible.WithLabelValues(mount).Set(float64(visible))
	r.NodesShrunk.WithLabelValues(mount).Set(float64(shrunk))
}

// OnSimulateStart implements observability.PipelineHooks.
func (r *Registry) OnSimulateStart(context.Context, int, int) {}

// OnSimulateComplete implements observability.PipelineHooks.
func (r *Registry) OnSimulateComplete(_ context.Context, ticks int, d time.Duration, err error) {
	r.SimulationsTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.SimulationDuration.Observe(d.Seconds())
	r.SimulationTicks.Observe(float64(ticks))
}

// OnRenderStart implements observability.PipelineHooks.
func (r *Registry) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (r *Registry) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	s := status(err)
	for _, f := range formats {
		r.RendersTotal.WithLabelValues(f, s).Inc()
	}
	if err == nil {
		r.RenderDuration.WithLabelValues(strings.Join(formats, ",")).Observe(d.Seconds())
	}
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnServe implements observability.HTTPHooks.
func (r *Registry) OnServe(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
