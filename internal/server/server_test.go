package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spheregrid/pkg/cache"
	"github.com/matzehuels/spheregrid/pkg/metrics"
	"github.com/matzehuels/spheregrid/pkg/observability"
)

// newTestServer returns a server whose instances only render the frame that
// runs during initialization, so rotations are deterministic.
func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.FrameInterval == 0 {
		cfg.FrameInterval = time.Hour
	}
	s := New(cfg)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func create(t *testing.T, s *Server, body string) state {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/widgets", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	return decode[state](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	h := decode[healthResponse](t, rec)
	if h.Status != "ok" || h.Instances != 0 {
		t.Errorf("health = %+v", h)
	}
}

func TestCreateAndState(t *testing.T) {
	s := newTestServer(t, Config{})

	st := create(t, s, `{"seed": 7, "config": {"base_node_size": 40}}`)
	if st.ID == "" {
		t.Fatal("missing id")
	}
	if st.Items != 10 || st.Visible == 0 {
		t.Errorf("state = %+v", st)
	}
	if math.Abs(st.Rotation.Y-15.3) > 1e-9 {
		t.Errorf("rotation after first frame = %+v", st.Rotation)
	}
	if st.Config.BaseNodeSize != 40 || !st.Config.AutoRotate {
		t.Errorf("config overrides not applied on top of defaults: %+v", st.Config)
	}

	rec := do(t, s, http.MethodGet, "/widgets/"+st.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	if got := decode[state](t, rec); got.ID != st.ID {
		t.Errorf("id = %q, want %q", got.ID, st.ID)
	}
}

func TestCreateErrors(t *testing.T) {
	s := newTestServer(t, Config{})
	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown field", `{"colour": "red"}`, "INVALID_INPUT"},
		{"bad json", `{`, "INVALID_INPUT"},
		{"bad size", `{"width": -1}`, "INVALID_INPUT"},
		{"bad config", `{"config": {"momentum_decay": 2}}`, "INVALID_CONFIG"},
		{"duplicate items", `{"items": [{"id":"a","name":"A"},{"id":"a","name":"B"}]}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/widgets", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			if e := decode[errorResponse](t, rec); e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestUnknownWidget(t *testing.T) {
	s := newTestServer(t, Config{})
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/widgets/nope"},
		{http.MethodGet, "/widgets/nope/frame.svg"},
		{http.MethodPost, "/widgets/nope/events"},
		{http.MethodDelete, "/widgets/nope"},
	} {
		rec := do(t, s, req.method, req.path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d", req.method, req.path, rec.Code)
			continue
		}
		if e := decode[errorResponse](t, rec); e.Code != "WIDGET_NOT_FOUND" {
			t.Errorf("%s %s code = %q", req.method, req.path, e.Code)
		}
	}
}

func TestEvents(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, "")

	rec := do(t, s, http.MethodPost, "/widgets/"+st.ID+"/events", `{"events": [
		{"type": "pointerdown", "x": 100, "y": 100},
		{"type": "pointermove", "x": 110, "y": 100}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	resp := decode[eventResponse](t, rec)
	if resp.Delivered != 2 || !resp.Dragging {
		t.Errorf("response = %+v", resp)
	}
	// The move is clamped to the maximum rotation speed.
	if math.Abs(resp.Rotation.Y-20.3) > 1e-9 {
		t.Errorf("rotation = %+v, want Y 20.3", resp.Rotation)
	}

	rec = do(t, s, http.MethodPost, "/widgets/"+st.ID+"/events", `{"events": [{"type": "pointerleave"}]}`)
	if resp := decode[eventResponse](t, rec); resp.Dragging {
		t.Error("pointerleave should end the drag")
	}
}

func TestEventsRejectsBatchAtomically(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, "")

	rec := do(t, s, http.MethodPost, "/widgets/"+st.ID+"/events", `{"events": [
		{"type": "pointerdown", "x": 1, "y": 1},
		{"type": "click"}
	]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/widgets/"+st.ID, "")
	if decode[state](t, rec).Dragging {
		t.Error("no event should have been delivered")
	}
}

func TestTouchEvents(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, "")

	rec := do(t, s, http.MethodPost, "/widgets/"+st.ID+"/events", `{"events": [
		{"type": "touchstart", "touches": [{"X": 50, "Y": 50}]},
		{"type": "touchmove", "x": 50, "y": 46},
		{"type": "touchend"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	resp := decode[eventResponse](t, rec)
	if resp.Dragging {
		t.Error("touchend should end the drag")
	}
	// Moving up 4 pixels pitches by +2.
	if math.Abs(resp.Rotation.X-17) > 1e-9 {
		t.Errorf("rotation = %+v, want X 17", resp.Rotation)
	}
}

func TestFrame(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, `{"width": 200, "height": 100}`)

	tests := []struct {
		format string
		ctype  string
		prefix string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"json", "application/json", "{"},
		{"png", "image/png", "\x89PNG"},
		{"webp", "image/webp", "RIFF"},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodGet, "/widgets/"+st.ID+"/frame."+tt.format, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d: %s", tt.format, rec.Code, rec.Body)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != tt.ctype {
			t.Errorf("%s content type = %q", tt.format, ct)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte(tt.prefix)) {
			t.Errorf("%s body starts with %q", tt.format, rec.Body.Bytes()[:8])
		}
	}

	rec := do(t, s, http.MethodGet, "/widgets/"+st.ID+"/frame.gif", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("gif status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/widgets/"+st.ID+"/frame.svg?labels=false", "")
	if strings.Contains(rec.Body.String(), "<text") {
		t.Error("labels=false should drop labels")
	}
}

func TestFrameRasterBudget(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, `{"width":4096,"height":4096}`)

	for _, path := range []string{
		"/widgets/" + st.ID + "/frame.png?scale=8",
		"/widgets/" + st.ID + "/frame.webp?scale=2",
		"/widgets/" + st.ID + "/frame.png?scale=NaN",
	} {
		if rec := do(t, s, http.MethodGet, path, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d: %s", path, rec.Code, rec.Body)
		}
	}
	// Vector output has no pixel budget.
	if rec := do(t, s, http.MethodGet, "/widgets/"+st.ID+"/frame.svg?scale=8", ""); rec.Code != http.StatusOK {
		t.Errorf("svg status = %d: %s", rec.Code, rec.Body)
	}
}

func TestDelete(t *testing.T) {
	s := newTestServer(t, Config{})
	st := create(t, s, "")

	rec := do(t, s, http.MethodDelete, "/widgets/"+st.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/widgets/"+st.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("deleted widget status = %d", rec.Code)
	}
}

func TestInstanceLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxInstances: 1})
	create(t, s, "")
	rec := do(t, s, http.MethodPost, "/widgets", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestExpire(t *testing.T) {
	s := newTestServer(t, Config{InstanceTTL: time.Minute})
	st := create(t, s, "")

	if n := s.expire(time.Now()); n != 0 {
		t.Errorf("expired %d fresh instances", n)
	}
	if n := s.expire(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}
	if rec := do(t, s, http.MethodGet, "/widgets/"+st.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expired widget status = %d", rec.Code)
	}
}

func TestFrameLoopAdvances(t *testing.T) {
	s := newTestServer(t, Config{FrameInterval: time.Millisecond})
	st := create(t, s, "")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, s, http.MethodGet, "/widgets/"+st.ID, "")
		if decode[state](t, rec).Tick >= 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("frame loop did not advance")
}

func TestSnapshot(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Config{Cache: c})

	path := "/snapshot.json?seed=3&ticks=5&auto_rotate=false"
	first := do(t, s, http.MethodGet, path, "")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", first.Code, first.Body)
	}
	if got := first.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q", got)
	}
	second := do(t, s, http.MethodGet, path, "")
	if got := second.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q", got)
	}
	if first.Header().Get("ETag") != second.Header().Get("ETag") {
		t.Error("ETag should be stable")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached body differs")
	}

	for _, bad := range []string{
		"/snapshot.gif",
		"/snapshot.svg?ticks=-1",
		"/snapshot.svg?seed=x",
		"/snapshot.svg?scale=100",
		"/snapshot.svg?background=blue",
		"/snapshot.svg?scale=NaN",
		"/snapshot.svg?width=NaN",
		"/snapshot.svg?height=Inf",
		"/snapshot.png?width=4096&height=4096&scale=8",
		"/snapshot.webp?width=4096&height=4096&scale=2",
	} {
		if rec := do(t, s, http.MethodGet, bad, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d", bad, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Install()
	t.Cleanup(observability.Reset)

	s := newTestServer(t, Config{Metrics: reg})
	create(t, s, "")
	do(t, s, http.MethodGet, "/healthz", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`spheregrid_http_requests_total{method="POST",route="/widgets`,
		`spheregrid_widgets_initialized_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	if rec := do(t, newTestServer(t, Config{}), http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without registry status = %d", rec.Code)
	}
}
