package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spheregrid/pkg/cache"
	"github.com/matzehuels/spheregrid/pkg/metrics"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultFrameInterval = time.Second / 60
	DefaultInstanceTTL   = 10 * time.Minute
	DefaultMaxInstances  = 64
	DefaultSweepInterval = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// Config configures a [Server].
type Config struct {
	Cache         cache.Cache       // artifact cache for snapshots; nil disables caching
	Metrics       *metrics.Registry // nil serves no /metrics
	Logger        *log.Logger
	FrameInterval time.Duration
	InstanceTTL   time.Duration
	MaxInstances  int
}

func (c *Config) setDefaults() {
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.InstanceTTL <= 0 {
		c.InstanceTTL = DefaultInstanceTTL
	}
	if c.MaxInstances == 0 {
		c.MaxInstances = DefaultMaxInstances
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Server serves live widget instances and stateless snapshots.
type Server struct {
	cfg       Config
	logger    *log.Logger
	runner    *pipeline.Runner
	instances *store
	router    chi.Router
	started   time.Time

	// ctx parents every instance frame loop.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server. Call Close to stop every live instance.
func New(cfg Config) *Server {
	cfg.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		runner:    pipeline.NewRunner(cfg.Cache, nil, cfg.Logger),
		instances: newStore(cfg.InstanceTTL, cfg.MaxInstances),
		started:   time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	r.Get("/snapshot.{format}", s.handleSnapshot)

	r.Route("/widgets", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Delete("/", s.handleDelete)
			r.Get("/frame.{format}", s.handleFrame)
			r.Post("/events", s.handleEvents)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
// and stops every live instance.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.sweep(ctx, DefaultSweepInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweep stops expired instances every interval until ctx is done.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.expire(now)
		}
	}
}

// expire stops the instances idle past their TTL and returns how many.
func (s *Server) expire(now time.Time) int {
	expired := s.instances.cleanup(now)
	for _, in := range expired {
		in.stop()
		s.logger.Info("widget expired", "id", in.id)
	}
	return len(expired)
}

// Close stops every live instance and releases the cache.
func (s *Server) Close() error {
	s.cancel()
	for _, in := range s.instances.drain() {
		in.stop()
	}
	return s.runner.Close()
}
