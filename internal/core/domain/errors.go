package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPath indicates a folder path that does not exist,
	// is not a directory, or cannot be read.
	ErrInvalidPath = errors.New("invalid path")

	// ErrFolderRemoved indicates an operation on a folder that has
	// already been removed.
	ErrFolderRemoved = errors.New("folder removed")

	// ErrUnsupportedMIME indicates no extractor is registered for a MIME type.
	ErrUnsupportedMIME = errors.New("unsupported MIME type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the native vector index is not
	// available. Similarity queries fall back to the store's exhaustive scan.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexingInProgress indicates an indexing run is already active
	// for the folder.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")
)
