//go:build !cgo

package hnsw

import (
	"context"

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

// Index stands in for the HNSWlib binding on builds without CGO. It is
// never constructed; New always reports the index unavailable.
type Index struct{}

// New reports the native index as unavailable. The error is an
// environment failure: selecting the HNSW index in configuration on a
// build without CGO must preserve the folder's data and tell the user
// how to recover, exactly like a native library that fails to load.
func New(path string, dimensions int, precision Precision) (*Index, error) {
	_ = path
	_ = dimensions
	_ = precision
	return nil, &domain.EnvironmentError{
		Op:          "load vector index",
		Remediation: "install a build with the native vector index enabled or set the vector index back to scan mode",
		Err:         domain.ErrVectorIndexUnavailable,
	}
}

// Add implements driven.VectorIndex.
func (x *Index) Add(_ context.Context, _ string, _ []float32) error {
	return domain.ErrVectorIndexUnavailable
}

// Delete implements driven.VectorIndex.
func (x *Index) Delete(_ context.Context, _ string) error {
	return domain.ErrVectorIndexUnavailable
}

// Search implements driven.VectorIndex.
func (x *Index) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, domain.ErrVectorIndexUnavailable
}

// Close implements driven.VectorIndex.
func (x *Index) Close() error { return nil }
