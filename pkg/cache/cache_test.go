package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

var errFlaky = errors.New("connection refused")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "frame:v1:abc"); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "frame:v1:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "frame:v1:abc")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "frame:v1:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "frame:v1:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "frame:v1:abc"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	fc := c.(*FileCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("fresh entry missed")
	}

	now = now.Add(time.Hour)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(fc.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	fc := c.(*FileCache)

	for _, raw := range []string{"", "no header", "soon\nvalue"} {
		_ = c.Set(ctx, "k", []byte("v"), 0)
		if err := os.WriteFile(fc.path("k"), []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
			t.Errorf("%q: hit %v, err %v; want clean miss", raw, hit, err)
		}
	}
}

func TestFileCacheBinaryValues(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	value := []byte("\x89PNG\r\n\x1a\n\x00\nline\n")
	if err := c.Set(ctx, "artifact:png", value, time.Hour); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "artifact:png")
	if err != nil || !hit || string(got) != string(value) {
		t.Errorf("Get = %q, %v, %v", got, hit, err)
	}
}

func TestDirStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	_ = c.Set(ctx, "a", []byte("1234"), 0)
	_ = c.Set(ctx, "b", []byte("12"), 0)

	n, size, err := DirStats(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Each entry carries a "0\n" header.
	if n != 2 || size != 4+2+2*2 {
		t.Errorf("DirStats = %d entries, %d bytes", n, size)
	}
	if n, _, err := DirStats(dir + "/missing"); n != 0 || err != nil {
		t.Errorf("missing dir: %d, %v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	n, err := ClearDir(dir)
	if err != nil {
		t.Fatalf("ClearDir: %v", err)
	}
	if n != 3 {
		t.Errorf("ClearDir removed %d entries, want 3", n)
	}
	if left, _ := os.ReadDir(dir); len(left) != 0 {
		t.Errorf("%d shard directories left behind", len(left))
	}

	if n, err := ClearDir(dir + "/missing"); n != 0 || err != nil {
		t.Errorf("ClearDir(missing) = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"seed": 1})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if j2, _ := HashJSON(map[string]int{"seed": 2}); j1 == j2 {
		t.Error("HashJSON should differ for different values")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail for unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.FrameKey("abc"); got != "frame:v1:abc" {
		t.Errorf("FrameKey = %q", got)
	}

	svg := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", Labels: true})
	png := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", Labels: true})
	png2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", Labels: true, Scale: 2})
	if svg == png || png == png2 {
		t.Error("different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(svg, "artifact:v1:") {
		t.Errorf("ArtifactKey = %q, want artifact:v1: prefix", svg)
	}
	if svg != k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", Labels: true}) {
		t.Error("ArtifactKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.FrameKey("abc"); got != "staging:frame:v1:abc" {
		t.Errorf("FrameKey = %q", got)
	}
	if got := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "staging:artifact:") {
		t.Errorf("ArtifactKey = %q, want prefix", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.FrameKey("x"); key != "prefix:frame:v1:x" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	err := fmt.Errorf("ping: %w", Transient(errFlaky))
	if !IsTransient(err) || !errors.Is(err, errFlaky) {
		t.Errorf("wrapped transient error lost its marker or cause: %v", err)
	}
	if err.Error() != "ping: connection refused" {
		t.Errorf("message = %q", err.Error())
	}
	if IsTransient(errFlaky) {
		t.Error("plain errors are not transient")
	}
}

func TestBackoffRetry(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Microsecond, Max: 2 * time.Microsecond}
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		transient bool
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Retry(ctx, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.transient {
					return Transient(errFlaky)
				}
				return errFlaky
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err != nil && (err != errFlaky || IsTransient(err)) {
				t.Errorf("err = %#v, want the bare cause", err)
			}
		})
	}
}

func TestBackoffRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Backoff{Attempts: 5, Delay: time.Hour}.Retry(ctx, func() error {
		calls++
		return Transient(errFlaky)
	})
	if err != context.Canceled || calls != 1 {
		t.Errorf("err = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
