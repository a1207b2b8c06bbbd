// Package io reads and writes sphere grid scene files.
//
// A scene bundles everything needed to reproduce a frame offline: the widget
// configuration, the items, the layout seed, the container size, how many
// frames to run and an optional scripted gesture. Scenes can be written as
// TOML, YAML or JSON; the format follows the file extension.
//
//	seed   = 42
//	width  = 400
//	height = 400
//	ticks  = 60
//
//	[widget]
//	sphere_radius = 180
//	auto_rotate   = false
//
//	[[items]]
//	id   = "python"
//	icon = "fab fa-python"
//	name = "Python"
//
//	[[gesture]]
//	tick = 0
//	type = "pointerdown"
//	x    = 100
//	y    = 100
//
// Fields left out of a file keep their defaults, including nested tuning
// values and auto_rotate. Unknown keys are rejected so typos surface early.
// A scene without items uses [sphere.DefaultItems].
package io
