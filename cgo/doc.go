// Package cgo isolates native-library bindings from the pure Go core.
// Everything under it builds behind a tag, with a pure Go stub taking
// over when the tag is off, so the daemon always compiles and native
// load failures degrade instead of crash.
//
// Sub-packages:
//   - hnsw: HNSWlib bindings for approximate nearest-neighbour search
package cgo
