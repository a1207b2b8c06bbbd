package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spheregrid/pkg/buildinfo"
	apierr "github.com/matzehuels/spheregrid/pkg/errors"
	"github.com/matzehuels/spheregrid/pkg/host/memory"
	sceneio "github.com/matzehuels/spheregrid/pkg/io"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Build     buildinfo.Info `json:"build"`
	Uptime    string         `json:"uptime"`
	Instances int            `json:"instances"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Build:     buildinfo.Get(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Instances: s.instances.len(),
	})
}

// createRequest is decoded on top of the defaults, so every field is optional.
type createRequest struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Seed   uint64        `json:"seed"`
	Config sphere.Config `json:"config"`
	Items  []sphere.Item `json:"items"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req := createRequest{
		Width:  sceneio.DefaultWidth,
		Height: sceneio.DefaultHeight,
		Config: sphere.DefaultConfig(),
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > pipeline.MaxSize || req.Height > pipeline.MaxSize {
		s.respondError(w, apierr.New(apierr.ErrCodeInvalidInput, "size %gx%g out of range", req.Width, req.Height))
		return
	}
	cfg := req.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		s.respondError(w, err)
		return
	}

	opts := []sphere.Option{sphere.WithLogger(s.logger)}
	if req.Items != nil {
		if err := sceneio.ValidateItems(req.Items); err != nil {
			s.respondError(w, err)
			return
		}
		opts = append(opts, sphere.WithItems(req.Items))
	}
	if req.Seed != 0 {
		opts = append(opts, sphere.WithSeed(req.Seed))
	}

	host := memory.New()
	host.Mount(pipeline.Mount, req.Width, req.Height)
	in := newInstance(host, sphere.New(host, pipeline.Mount, cfg, opts...), s.cfg.InstanceTTL)
	if err := s.instances.add(in); err != nil {
		s.respondError(w, err)
		return
	}
	in.start(s.ctx, s.cfg.FrameInterval)

	s.logger.Info("widget created", "id", in.id, "items", len(in.widget.Items()))
	w.Header().Set("Location", "/widgets/"+in.id)
	s.respondJSON(w, http.StatusCreated, in.state())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	in, err := s.instances.get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, in.state())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := s.instances.remove(id)
	if !ok {
		s.respondError(w, apierr.New(apierr.ErrCodeWidgetNotFound, "widget %q not found", id))
		return
	}
	in.stop()
	s.logger.Info("widget deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	in, err := s.instances.get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	opts, err := renderOptions(r, format)
	if err != nil {
		s.respondError(w, err)
		return
	}

	frame, rot := in.snapshot()
	artifacts, err := pipeline.Render(frame, rot, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.respondArtifact(w, format, artifacts[format])
}

// eventRequest carries one or more input events. Touch events without
// explicit touches get a single touch at (x, y), except touchend.
type eventRequest struct {
	Events []eventBody `json:"events"`
}

type eventBody struct {
	Type    string         `json:"type"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Touches []sphere.Point `json:"touches,omitempty"`
}

func (b eventBody) event() (sphere.Event, error) {
	if b.Touches != nil {
		t, ok := sphere.ParseEventType(b.Type)
		if !ok {
			return sphere.Event{}, apierr.New(apierr.ErrCodeInvalidEvent, "unknown event type %q", b.Type)
		}
		return sphere.Event{Type: t, X: b.X, Y: b.Y, Touches: b.Touches}, nil
	}
	return sceneio.Step{Type: b.Type, X: b.X, Y: b.Y}.Event()
}

type eventResponse struct {
	Delivered int             `json:"delivered"`
	Rotation  sphere.Rotation `json:"rotation"`
	Dragging  bool            `json:"dragging"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	in, err := s.instances.get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req eventRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	// Convert everything first so a bad event delivers nothing.
	events := make([]sphere.Event, 0, len(req.Events))
	for i, b := range req.Events {
		e, err := b.event()
		if err != nil {
			s.respondError(w, apierr.Wrap(apierr.ErrCodeInvalidEvent, err, "event %d", i))
			return
		}
		events = append(events, e)
	}
	for _, e := range events {
		in.host.Dispatch(pipeline.Mount, e)
	}

	resp := eventResponse{Delivered: len(events)}
	in.host.Do(func() {
		resp.Rotation = in.widget.Rotation()
		resp.Dragging = in.widget.Dragging()
	})
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := renderOptions(r, format)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := sceneOptions(r, &opts); err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(result.SceneHash))
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo))
	s.respondArtifact(w, format, result.Artifacts[format])
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.FrameHit && ci.RenderHit:
		return "hit"
	case ci.FrameHit:
		return "partial"
	default:
		return "miss"
	}
}

// renderOptions reads format, scale, background and labels.
func renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Formats:    []string{format},
		Background: q.Get("background"),
	}
	var err error
	if opts.Scale, err = floatParam(q.Get("scale"), 0); err != nil {
		return opts, err
	}
	if v := q.Get("labels"); v != "" {
		labels, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apierr.New(apierr.ErrCodeInvalidInput, "labels: %q is not a boolean", v)
		}
		opts.NoLabels = !labels
	}
	if opts.Scale < 0 || opts.Scale > pipeline.MaxScale {
		return opts, apierr.New(apierr.ErrCodeInvalidInput, "scale %g out of range (0, %g]", opts.Scale, pipeline.MaxScale)
	}
	return opts, opts.ValidateAndSetDefaults()
}

// sceneOptions reads seed, ticks, width, height and auto_rotate into opts
// and revalidates it.
func sceneOptions(r *http.Request, opts *pipeline.Options) error {
	q := r.URL.Query()
	next := pipeline.Options{
		Formats:    opts.Formats,
		Scale:      opts.Scale,
		Background: opts.Background,
		NoLabels:   opts.NoLabels,
		Ticks:      sceneio.DefaultTicks,
	}
	var err error
	if v := q.Get("seed"); v != "" {
		if next.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return apierr.New(apierr.ErrCodeInvalidInput, "seed: %q is not an unsigned integer", v)
		}
	}
	if v := q.Get("ticks"); v != "" {
		if next.Ticks, err = strconv.Atoi(v); err != nil {
			return apierr.New(apierr.ErrCodeInvalidInput, "ticks: %q is not an integer", v)
		}
	}
	if next.Width, err = floatParam(q.Get("width"), 0); err != nil {
		return err
	}
	if next.Height, err = floatParam(q.Get("height"), 0); err != nil {
		return err
	}
	if v := q.Get("auto_rotate"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return apierr.New(apierr.ErrCodeInvalidInput, "auto_rotate: %q is not a boolean", v)
		}
		cfg := sphere.DefaultConfig()
		cfg.AutoRotate = on
		next.Config = &cfg
	}
	next.Refresh = q.Get("refresh") == "1" || q.Get("refresh") == "true"
	if err := next.ValidateAndSetDefaults(); err != nil {
		return err
	}
	*opts = next
	return nil
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apierr.New(apierr.ErrCodeInvalidInput, "%q is not a finite number", v)
	}
	return f, nil
}

func contentType(format string) string {
	if ct, ok := pipeline.ContentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// decodeBody decodes a JSON body into v, rejecting unknown fields. An empty
// body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apierr.Wrap(apierr.ErrCodeInvalidInput, err, "decode request body: %s", errSummary(err))
	}
	return nil
}

func errSummary(err error) string {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Sprintf("syntax error at offset %d", syn.Offset)
	}
	return err.Error()
}
