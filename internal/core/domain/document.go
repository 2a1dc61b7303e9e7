package domain

import "time"

// Document represents an indexed file within a monitored folder.
// Content is never stored: the document row carries only identity,
// location and the content hash used for change detection.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FolderID links to the owning MonitoredFolder.
	FolderID string

	// Path is the file path relative to the folder root.
	Path string

	// ContentHash is the hex-encoded SHA-256 of the file bytes.
	// Recomputed on every scan; a change invalidates all chunks.
	ContentHash string

	// MIME is the detected content type (e.g., "application/pdf").
	MIME string

	// ModTime is the file modification time at last index.
	ModTime time.Time

	// Size is the file size in bytes at last index.
	Size int64

	// IndexedAt is when the document was last (re-)indexed.
	IndexedAt time.Time
}

// Chunk is a searchable unit within a document, addressed by its
// extraction coordinates. Chunks deliberately have no text field: the
// text is regenerated from Coordinates through the text reconstructor,
// which is what makes the store free of duplicated content.
//
// Chunks are created wholesale during indexing and invalidated wholesale
// when the owning document's content hash changes; they are never
// partially updated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the chunk's position within the document (0-based).
	Ordinal int

	// Coordinates locate the chunk's exact text in the source file.
	Coordinates ExtractionCoordinates

	// TokenEstimate is the approximate token count of the chunk text.
	TokenEstimate int

	// Semantic holds derived metadata computed at indexing time.
	Semantic SemanticMetadata

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// SemanticMetadata is derived from chunk text during indexing, before the
// text is discarded. It supports filtering and display without requiring
// reconstruction.
type SemanticMetadata struct {
	// KeyPhrases are the highest-frequency content terms of the chunk.
	KeyPhrases []string

	// Topics are document-level terms the chunk contributes to.
	Topics []string

	// Readability is a Flesch reading-ease style score (0-100, higher
	// is easier).
	Readability float64
}
