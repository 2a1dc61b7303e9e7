package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// Segment is one chunk-sized piece of a source file: the coordinates that
// address it plus the text found there at segmentation time. The text is
// embedded and then discarded; only the coordinates are persisted.
type Segment struct {
	// Coordinates address the segment in the source file.
	Coordinates domain.ExtractionCoordinates

	// Text is the segment's content as extracted now. Extract must return
	// this exact string for the same coordinates while the file is
	// unchanged.
	Text string
}

// Extractor handles one family of document formats. Segmentation and
// extraction are two views of the same mapping: for every segment s
// produced by Segment, Extract(s.Coordinates) returns s.Text byte for
// byte as long as the source file has not changed.
type Extractor interface {
	// MIMETypes lists the content types this extractor handles.
	MIMETypes() []string

	// Segment splits the file into chunk-sized segments with coordinates.
	Segment(ctx context.Context, path string) ([]Segment, error)

	// Extract re-reads the text addressed by coordinates from the file.
	// Returns domain.CoordinateMismatchError when the coordinates no
	// longer resolve (file truncated, page gone, sheet renamed).
	Extract(ctx context.Context, path string, coords domain.ExtractionCoordinates) (string, error)
}

// ExtractorRegistry selects the extractor for a content type.
type ExtractorRegistry interface {
	// ForMIME returns the extractor handling the given content type.
	// Returns domain.ErrUnsupportedMIME when no extractor matches.
	ForMIME(mime string) (Extractor, error)

	// Supported lists all content types with a registered extractor.
	Supported() []string
}
