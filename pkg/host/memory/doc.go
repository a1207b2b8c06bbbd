// Package memory provides a headless, retained-mode [sphere.Host].
//
// Elements keep the last style the widget applied to them, so the host can be
// snapshotted into a [render.Frame] at any time. Frames are pumped explicitly
// with [Host.Step] or on a ticker with [Host.Run]; input arrives through
// [Host.Dispatch].
//
// All widget callbacks (frame callbacks, event handlers and functions passed
// to [Host.Do]) run one at a time, which is what makes it safe to drive a
// non-concurrent widget from an HTTP handler and a ticker at once. Snapshots
// only read host state and may run concurrently with the loop.
//
//	h := memory.New()
//	h.Mount("sphere-grid-container", 400, 400)
//	w := sphere.New(h, "sphere-grid-container", sphere.DefaultConfig())
//	h.Do(w.Initialize)
//	go h.Run(ctx, time.Second/60)
package memory
