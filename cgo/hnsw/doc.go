// Package hnsw provides CGO bindings for HNSWlib.
// It implements the driven.VectorIndex interface as an approximate
// nearest-neighbour accelerator for large folders; the default
// implementation remains the store's exhaustive scan.
//
// Build requires:
//   - HNSWlib header (fetched via CMake FetchContent)
//   - C++17 compiler
//
// A failure to load or link the native library is an environment
// failure: it never touches indexed data and is reported with a
// remediation instead of tearing the folder down.
package hnsw
