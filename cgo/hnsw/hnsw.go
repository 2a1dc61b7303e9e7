//go:build cgo

package hnsw

/*
#cgo CXXFLAGS: -std=c++17 -O3 -I${SRCDIR}/../../clib/build/_deps/hnswlib-src
#cgo LDFLAGS: -lstdc++

#include "hnsw_wrapper.h"
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// DefaultMaxElements caps the number of vectors a fresh index reserves
// space for. HNSWlib grows the graph up to this bound.
const DefaultMaxElements = 100000

// Precision selects how vectors are stored on disk. Runtime operations
// always use float32; this only affects disk storage.
type Precision int

const (
	// PrecisionFloat32 stores vectors at full precision (no compression).
	PrecisionFloat32 Precision = 0
	// PrecisionFloat16 stores vectors at half precision (50% storage savings).
	PrecisionFloat16 Precision = 1
	// PrecisionInt8 stores vectors at 8-bit precision (75% storage savings).
	PrecisionInt8 Precision = 2
)

var errClosed = errors.New("hnsw: index is closed")

// Index is the HNSWlib-backed vector index. One Index maps chunk IDs to
// embedding vectors and answers nearest-neighbour queries over them.
type Index struct {
	mu         sync.RWMutex
	native     *C.HnswIndex
	path       string
	dimensions int
}

// New opens the index file at path, creating it with the given storage
// precision when absent. All vectors in one index share the dimension
// count of the embedding model that produced them. A native open
// failure is an environment failure: indexed data stays intact and the
// caller can fall back to scanning stored vectors.
func New(path string, dimensions int, precision Precision) (*Index, error) {
	if path == "" {
		return nil, errors.New("hnsw: path cannot be empty")
	}
	if dimensions <= 0 {
		return nil, errors.New("hnsw: dimensions must be positive")
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	native := C.hnsw_open(cpath, C.int(dimensions))
	if native == nil {
		native = C.hnsw_create(cpath, C.int(dimensions), C.int(DefaultMaxElements), C.HnswPrecision(precision))
		if native == nil {
			return nil, &domain.EnvironmentError{
				Op:          "load vector index",
				Remediation: "rebuild the native vector index library (clib) or set the vector index back to scan mode",
				Err:         fmt.Errorf("hnsw: open or create index at %s: %w", path, domain.ErrVectorIndexUnavailable),
			}
		}
	}

	return &Index{native: native, path: path, dimensions: dimensions}, nil
}

// checkDimensions rejects vectors from a different embedding model
// before they reach the native layer.
func (x *Index) checkDimensions(n int) error {
	if n != x.dimensions {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			domain.ErrInvalidInput, n, x.dimensions)
	}
	return nil
}

// Add inserts or replaces the vector for the given chunk ID.
func (x *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.native == nil {
		return errClosed
	}
	if err := x.checkDimensions(len(embedding)); err != nil {
		return err
	}

	cid := C.CString(chunkID)
	defer C.free(unsafe.Pointer(cid))

	rc := C.hnsw_add(x.native, cid, (*C.float)(unsafe.Pointer(&embedding[0])), C.int(x.dimensions))
	if rc != 0 {
		return fmt.Errorf("hnsw: add %s: code %d", chunkID, int(rc))
	}
	return nil
}

// Delete removes a vector from the index. Deleting an absent vector is
// not an error.
func (x *Index) Delete(_ context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.native == nil {
		return errClosed
	}

	cid := C.CString(chunkID)
	defer C.free(unsafe.Pointer(cid))

	if rc := C.hnsw_delete(x.native, cid); rc != 0 {
		return fmt.Errorf("hnsw: delete %s: code %d", chunkID, int(rc))
	}
	return nil
}

// Search finds the k nearest neighbours to the query vector, best first.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.native == nil {
		return nil, errClosed
	}
	if err := x.checkDimensions(len(query)); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	var raw *C.HnswSearchResult
	count := C.hnsw_search(x.native, (*C.float)(unsafe.Pointer(&query[0])), C.int(x.dimensions), C.int(k), &raw)
	if count < 0 {
		return nil, errors.New("hnsw: search failed")
	}
	if count == 0 || raw == nil {
		return nil, nil
	}
	defer C.hnsw_free_results(raw, count)

	hits := make([]driven.VectorHit, int(count))
	for i, r := range unsafe.Slice(raw, int(count)) {
		hits[i] = driven.VectorHit{
			ChunkID:    C.GoString(r.chunk_id),
			Similarity: float64(r.similarity),
		}
	}
	return hits, nil
}

// Close releases the native index. The index file stays on disk.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.native != nil {
		C.hnsw_close(x.native)
		x.native = nil
	}
	return nil
}
