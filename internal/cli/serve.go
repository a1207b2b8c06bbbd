package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spheregrid/internal/server"
	"github.com/matzehuels/spheregrid/pkg/cache"
	"github.com/matzehuels/spheregrid/pkg/metrics"
)

// redisEnv names the variable that supplies --redis when the flag is unset.
const redisEnv = "SPHEREGRID_REDIS_URL"

type serveOpts struct {
	addr         string
	redisURL     string
	noCache      bool
	noMetrics    bool
	fps          int
	ttl          time.Duration
	maxInstances int
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:         ":8080",
		fps:          60,
		ttl:          server.DefaultInstanceTTL,
		maxInstances: server.DefaultMaxInstances,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live widget instances and snapshots over HTTP",
		Example: `  spheregrid serve --addr :9000
  spheregrid serve --redis redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.redisURL == "" {
				opts.redisURL = os.Getenv(redisEnv)
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", opts.addr, "listen address")
	f.StringVar(&opts.redisURL, "redis", "", "redis URL for a shared snapshot cache (env "+redisEnv+")")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the snapshot cache")
	f.BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")
	f.IntVar(&opts.fps, "fps", opts.fps, "frame rate of live instances")
	f.DurationVar(&opts.ttl, "ttl", opts.ttl, "idle time before a live instance is torn down")
	f.IntVar(&opts.maxInstances, "max-instances", opts.maxInstances, "maximum live instances (negative for no limit)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	if opts.fps <= 0 || opts.fps > 240 {
		return fmt.Errorf("fps %d out of range (1-240)", opts.fps)
	}

	store, backend, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Cache:         store,
		Logger:        c.Logger,
		FrameInterval: time.Second / time.Duration(opts.fps),
		InstanceTTL:   opts.ttl,
		MaxInstances:  opts.maxInstances,
	}
	if !opts.noMetrics {
		reg := metrics.DefaultRegistry()
		reg.Install()
		cfg.Metrics = reg
	}

	printInfo(c.Out, "Serving on %s", StyleValue.Render(opts.addr))
	printDetail(c.Out, "cache: %s · fps: %d · ttl: %s", backend, opts.fps, opts.ttl)
	printNextStep(c.Out, "Create a widget", fmt.Sprintf("curl -X POST http://localhost%s/widgets", opts.addr))

	return server.New(cfg).ListenAndServe(ctx, opts.addr)
}

// serveCache picks redis, the local file cache, or none, and names the choice.
func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, string, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), "off", nil
	case opts.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, "", fmt.Errorf("connect redis: %w", err)
		}
		return rc, "redis", nil
	default:
		fc, err := newCache(false)
		if err != nil {
			return nil, "", err
		}
		return fc, "file", nil
	}
}
