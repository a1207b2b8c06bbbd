package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spheregrid/pkg/cache"
	"github.com/matzehuels/spheregrid/pkg/observability"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so the caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// cachedFrame is the cache representation of a simulated frame.
type cachedFrame struct {
	Frame    render.Frame    `json:"frame"`
	Rotation sphere.Rotation `json:"rotation"`
}

// Execute runs the simulate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Simulate
	simStart := time.Now()
	frame, rot, hash, simHit, err := r.SimulateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	result.Frame = frame
	result.Rotation = rot
	result.SceneHash = hash
	result.Stats.Items = len(opts.Items)
	result.Stats.Visible = frame.Visible()
	result.Stats.Ticks = opts.Ticks
	result.Stats.SimulateTime = time.Since(simStart)
	result.CacheInfo.FrameHit = simHit

	r.Logger.Info("simulated scene",
		"items", result.Stats.Items,
		"visible", result.Stats.Visible,
		"ticks", opts.Ticks,
		"cached", simHit,
		"duration", result.Stats.SimulateTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, frame, rot, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SimulateWithCacheInfo produces the final frame for opts, consulting the
// cache first unless opts.Refresh is set. It also returns the scene hash.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, opts Options) (render.Frame, sphere.Rotation, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return render.Frame{}, sphere.Rotation{}, "", false, err
	}

	hash, err := opts.SceneHash()
	if err != nil {
		return render.Frame{}, sphere.Rotation{}, "", false, err
	}
	cacheKey := r.Keyer.FrameKey(hash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cf cachedFrame
			if err := json.Unmarshal(data, &cf); err == nil {
				observability.Cache().OnCacheHit(ctx, "frame")
				return cf.Frame, cf.Rotation, hash, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		}
		observability.Cache().OnCacheMiss(ctx, "frame")
	}

	hooks := observability.Pipeline()
	hooks.OnSimulateStart(ctx, len(opts.Items), opts.Ticks)
	start := time.Now()
	frame, rot, err := Simulate(ctx, opts)
	hooks.OnSimulateComplete(ctx, opts.Ticks, time.Since(start), err)
	if err != nil {
		return render.Frame{}, sphere.Rotation{}, "", false, err
	}

	if data, err := json.Marshal(cachedFrame{Frame: frame, Rotation: rot}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLFrame); err == nil {
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		} else {
			r.Logger.Warn("cache frame", "key", cacheKey, "err", err)
		}
	}

	return frame, rot, hash, false, nil
}

// Simulate is a convenience wrapper that calls SimulateWithCacheInfo and discards the cache hit info.
func (r *Runner) Simulate(ctx context.Context, opts Options) (render.Frame, sphere.Rotation, error) {
	frame, rot, _, _, err := r.SimulateWithCacheInfo(ctx, opts)
	return frame, rot, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The hit flag is true only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame render.Frame, rot sphere.Rotation, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	frameHash, err := cache.HashJSON(cachedFrame{Frame: frame, Rotation: rot})
	if err != nil {
		return nil, false, fmt.Errorf("hash frame for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(frame, rot, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
