// Package server exposes sphere grid widgets over HTTP.
//
// Each live instance owns a headless [memory.Host] whose frame loop runs on
// its own goroutine at the configured interval. Clients feed pointer and touch
// events in and read frames out in any render format. A stateless snapshot
// endpoint runs the cached offline pipeline instead.
//
// Routes:
//
//	POST   /widgets                     create and initialize an instance
//	GET    /widgets/{id}                instance state
//	GET    /widgets/{id}/frame.{format} current frame (svg, json, png, webp)
//	POST   /widgets/{id}/events         deliver pointer or touch events
//	DELETE /widgets/{id}                tear down
//	GET    /snapshot.{format}           stateless pipeline render
//	GET    /healthz                     build info and instance count
//	GET    /metrics                     Prometheus exposition
//
// Idle instances expire after [Config.InstanceTTL].
package server
