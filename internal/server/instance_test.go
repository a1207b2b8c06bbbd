package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/spheregrid/pkg/host/memory"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

func newRunningInstance(t *testing.T) *instance {
	t.Helper()
	host := memory.New()
	host.Mount(pipeline.Mount, 400, 400)
	in := newInstance(host, sphere.New(host, pipeline.Mount, sphere.DefaultConfig()), time.Hour)
	in.start(context.Background(), time.Millisecond)
	t.Cleanup(in.stop)
	return in
}

// Under a running loop the frame and rotation returned by snapshot must
// belong to the same tick. Rotation only changes inside Step, so any pair
// observed while holding the loop is the reference for its tick.
func TestInstanceSnapshotConsistent(t *testing.T) {
	in := newRunningInstance(t)

	var (
		mu   sync.Mutex
		seen = map[int]sphere.Rotation{}
	)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			in.host.Do(func() {
				tick, rot := in.host.Tick(), in.widget.Rotation()
				mu.Lock()
				seen[tick] = rot
				mu.Unlock()
			})
		}
	}()

	type pair struct {
		tick int
		rot  sphere.Rotation
	}
	var got []pair
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		frame, rot := in.snapshot()
		got = append(got, pair{frame.Tick, rot})
	}
	close(stop)
	wg.Wait()

	checked := 0
	for _, p := range got {
		want, ok := seen[p.tick]
		if !ok {
			continue
		}
		checked++
		if p.rot != want {
			t.Fatalf("tick %d: snapshot rotation %+v, loop rotation %+v", p.tick, p.rot, want)
		}
	}
	if checked == 0 {
		t.Skip("loop did not overlap with any snapshot")
	}
}

func TestInstanceStateTickMatchesRotation(t *testing.T) {
	in := newRunningInstance(t)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && in.host.Tick() < 3 {
		time.Sleep(time.Millisecond)
	}

	for range 50 {
		st := in.state()
		frame, rot := in.snapshot()
		if frame.Tick < st.Tick {
			t.Fatalf("snapshot tick %d went backwards from state tick %d", frame.Tick, st.Tick)
		}
		if frame.Tick == st.Tick && rot != st.Rotation {
			t.Fatalf("tick %d: state rotation %+v, snapshot rotation %+v", st.Tick, st.Rotation, rot)
		}
	}
}
