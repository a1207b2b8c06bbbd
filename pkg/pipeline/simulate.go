package pipeline

import (
	"context"

	"github.com/matzehuels/spheregrid/pkg/host/memory"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// Simulate runs a widget on a fresh headless host and captures the frame
// after opts.Ticks frames. The first frame renders during initialization and
// is not counted. Gesture steps with Tick k are delivered just before frame k.
//
// opts must have been validated.
func Simulate(ctx context.Context, opts Options) (render.Frame, sphere.Rotation, error) {
	h := memory.New()
	h.Mount(Mount, opts.Width, opts.Height)

	w := sphere.New(h, Mount, *opts.Config,
		sphere.WithItems(opts.Items),
		sphere.WithSeed(opts.Seed),
		sphere.WithLogger(opts.Logger),
	)
	h.Do(w.Initialize)
	defer h.Do(w.Teardown)

	next := 0
	for tick := range opts.Ticks {
		if tick%256 == 0 {
			if err := ctx.Err(); err != nil {
				return render.Frame{}, sphere.Rotation{}, err
			}
		}
		for ; next < len(opts.Gesture) && opts.Gesture[next].Tick == tick; next++ {
			e, err := opts.Gesture[next].Event()
			if err != nil {
				return render.Frame{}, sphere.Rotation{}, err
			}
			h.Dispatch(Mount, e)
		}
		h.Step()
	}

	frame, _ := h.Snapshot(Mount)
	var rot sphere.Rotation
	h.Do(func() { rot = w.Rotation() })
	return frame, rot, nil
}
