// Package pptx segments PowerPoint presentations by slide number.
package pptx

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// slidePattern matches slide part names inside the archive and captures
// the 1-based slide number.
var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extractor handles presentations. A coordinate addresses one whole
// slide; slides are small enough that each is a single chunk. Slide text
// is the concatenation of the slide XML's text runs, keyed by the slide
// number parsed from the part name, never by archive order.
type Extractor struct{}

// New creates a PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// MIMETypes returns the MIME types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
}

// Segment yields one segment per non-empty slide, in slide order.
func (e *Extractor) Segment(ctx context.Context, path string) ([]driven.Segment, error) {
	slides, err := slideTexts(path)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(slides))
	for n := range slides {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var segments []driven.Segment
	for _, n := range numbers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := slides[n]
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, driven.Segment{
			Coordinates: domain.ExtractionCoordinates{
				Kind:  domain.CoordinateSlide,
				Slide: n,
			},
			Text: text,
		})
	}
	return segments, nil
}

// Extract re-derives the addressed slide's text.
func (e *Extractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	if coords.Kind != domain.CoordinateSlide {
		return "", fmt.Errorf("%w: pptx cannot resolve %s coordinates", domain.ErrInvalidInput, coords.Kind)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	slides, err := slideTexts(path)
	if err != nil {
		return "", err
	}

	text, ok := slides[coords.Slide]
	if !ok {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("presentation has no slide %d", coords.Slide),
		}
	}
	return text, nil
}

// slideTexts reads every slide part and extracts its text runs.
func slideTexts(path string) (map[int]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	slides := make(map[int]string)
	for _, file := range r.File {
		m := slidePattern.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening slide %d of %s: %w", n, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading slide %d of %s: %w", n, path, err)
		}

		slides[n] = runTexts(string(data))
	}
	return slides, nil
}

// runTexts pulls the contents of every <a:t> element, joined with newlines.
func runTexts(xmlContent string) string {
	var runs []string
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if end := strings.Index(part, "</a:t>"); end >= 0 {
			runs = append(runs, part[:end])
		}
	}
	return strings.Join(runs, "\n")
}
