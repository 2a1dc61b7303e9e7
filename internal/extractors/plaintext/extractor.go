// Package plaintext segments plain text and markdown files by raw byte
// ranges.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/extractors/segmentation"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text formats. Coordinates are byte ranges into
// the raw file, so extraction is a bounds check and a slice.
type Extractor struct {
	splitter *segmentation.Splitter
}

// New creates a plain text extractor.
func New(opts ...segmentation.Option) *Extractor {
	return &Extractor{splitter: segmentation.New(opts...)}
}

// MIMETypes returns the MIME types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"application/json",
		"application/x-yaml",
	}
}

// Segment splits the file into byte-range segments.
func (e *Extractor) Segment(_ context.Context, path string) ([]driven.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	spans := e.splitter.Split(text)

	segments := make([]driven.Segment, 0, len(spans))
	for _, span := range spans {
		segments = append(segments, driven.Segment{
			Coordinates: domain.ExtractionCoordinates{
				Kind:  domain.CoordinateByteRange,
				Start: span.Start,
				End:   span.End,
			},
			Text: text[span.Start:span.End],
		})
	}
	return segments, nil
}

// Extract returns the bytes addressed by a byte-range coordinate.
func (e *Extractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	if coords.Kind != domain.CoordinateByteRange {
		return "", fmt.Errorf("%w: plaintext cannot resolve %s coordinates", domain.ErrInvalidInput, coords.Kind)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if coords.End > len(data) {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("file is %d bytes, range ends at %d", len(data), coords.End),
		}
	}
	return string(data[coords.Start:coords.End]), nil
}
