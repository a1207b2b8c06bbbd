// Package metrics exports widget, pipeline, cache and HTTP activity as
// Prometheus metrics.
//
// A [Registry] implements every hook interface in pkg/observability, so
// installing it is one call:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/spheregrid/pkg/observability"
)

const namespace = "spheregrid"

// Registry holds all metrics for the application.
type Registry struct {
	registry *prometheus.Registry

	// Widget metrics
	WidgetsActive  *prometheus.GaugeVec
	WidgetsTotal   prometheus.Counter
	FramesTotal    *prometheus.CounterVec
	FrameDuration  prometheus.Histogram
	NodesVisible   *prometheus.GaugeVec
	NodesShrunk    *prometheus.GaugeVec
	TeardownsTotal prometheus.Counter

	// Pipeline metrics
	SimulationsTotal   *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
	SimulationTicks    prometheus.Histogram
	RendersTotal       *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric registered on a fresh
// Prometheus registry, plus the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initWidgetMetrics()
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the widget, pipeline, cache and HTTP hooks.
// Call observability.Reset to undo it.
func (r *Registry) Install() {
	observability.SetWidgetHooks(r)
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}
