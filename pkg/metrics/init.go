package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// frameBuckets covers a frame budget of a few milliseconds.
var frameBuckets = []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025}

func (r *Registry) initWidgetMetrics() {
	f := promauto.With(r.registry)

	r.WidgetsActive = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "widgets_active",
		Help:      "Number of initialized widgets per mount",
	}, []string{"mount"})

	r.WidgetsTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "widgets_initialized_total",
		Help:      "Total number of widget initializations",
	})

	r.TeardownsTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "widgets_torn_down_total",
		Help:      "Total number of widget teardowns",
	})

	r.FramesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_total",
		Help:      "Total number of animation frames",
	}, []string{"mount"})

	r.FrameDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_duration_seconds",
		Help:      "Time spent projecting, resolving and styling one frame",
		Buckets:   frameBuckets,
	})

	r.NodesVisible = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "nodes_visible",
		Help:      "Visible nodes in the last frame",
	}, []string{"mount"})

	r.NodesShrunk = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "nodes_shrunk",
		Help:      "Visible nodes shrunk by collision resolution in the last frame",
	}, []string{"mount"})
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.SimulationsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_total",
		Help:      "Total number of pipeline simulations",
	}, []string{"status"})

	r.SimulationDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Pipeline simulation latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	r.SimulationTicks = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_ticks",
		Help:      "Frames simulated per pipeline run",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Total number of rendered artifacts",
	}, []string{"format", "status"})

	r.RenderDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Artifact render latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"formats"})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheHitsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits",
	}, []string{"key_type"})

	r.CacheMissesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses",
	}, []string{"key_type"})

	r.CacheSetBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cache_set_bytes",
		Help:      "Size of values written to the cache",
		Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
	}, []string{"key_type"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
}
