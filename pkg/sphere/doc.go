// Package sphere implements the sphere grid widget: technology items laid out
// on a virtual sphere that the user spins by dragging.
//
// # Overview
//
// The widget is split into five parts that run in a fixed order:
//
//  1. Layout: [Generate] places every item on the sphere once, at initialization,
//     using a Fibonacci (golden-angle) point set with extra pole coverage and a
//     little jitter.
//  2. Transform: [Project] rotates the static layout by the current [Rotation]
//     and derives screen position, depth, opacity, scale and stacking order.
//  3. Collision: [Resolve] shrinks visible nodes whose footprints overlap.
//  4. Motion: [Motion] turns pointer and touch drags into rotation, keeps the
//     thrown velocity after release and decays it frame by frame.
//  5. Render loop: [Widget] ties the above together once per frame and writes
//     the result to elements owned by a [Host].
//
// The first three are pure functions and can be used on their own:
//
//	cfg := sphere.DefaultConfig()
//	rng := rand.New(rand.NewPCG(42, 42))
//	positions := sphere.Generate(len(items), cfg, rng)
//	nodes := sphere.Resolve(sphere.Project(positions, sphere.Rotation{X: 15, Y: 15}, cfg), cfg)
//
// # Hosts
//
// The widget never draws anything itself. A [Host] supplies the mount
// container, element creation, event subscription and a per-frame scheduling
// primitive. The memory host in pkg/host/memory backs the terminal viewer, the
// HTTP server and the tests.
//
//	w := sphere.New(host, "sphere-grid-container", sphere.DefaultConfig())
//	w.Initialize()
//	defer w.Teardown()
//
// # Threading
//
// A widget is not safe for concurrent use. All event handlers and frame
// callbacks must be invoked from the host's single dispatch goroutine, which
// is how every host in this module behaves.
package sphere
