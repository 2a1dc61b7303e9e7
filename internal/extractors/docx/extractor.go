// Package docx segments Word documents by paragraph index ranges.
package docx

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// DefaultChunkSize is the target chunk size in bytes of joined paragraphs.
const DefaultChunkSize = 1000

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Word documents. A coordinate addresses a half-open
// paragraph index range; chunk text is the paragraphs joined with
// newlines. Paragraph order and content come straight from
// word/document.xml, so the mapping is stable for an unchanged file.
type Extractor struct {
	chunkSize int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithChunkSize sets the target chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// New creates a DOCX extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MIMETypes returns the MIME types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Segment groups consecutive paragraphs into chunk-sized ranges.
func (e *Extractor) Segment(_ context.Context, path string) ([]driven.Segment, error) {
	paras, err := paragraphs(path)
	if err != nil {
		return nil, err
	}

	var segments []driven.Segment
	from := 0
	size := 0
	for i, p := range paras {
		size += len(p) + 1
		if size < e.chunkSize && i < len(paras)-1 {
			continue
		}

		text := joinRange(paras, from, i+1)
		if strings.TrimSpace(text) != "" {
			segments = append(segments, driven.Segment{
				Coordinates: domain.ExtractionCoordinates{
					Kind: domain.CoordinateParagraphRange,
					From: from,
					To:   i + 1,
				},
				Text: text,
			})
		}
		from = i + 1
		size = 0
	}
	return segments, nil
}

// Extract re-derives the paragraph list and returns the addressed range.
func (e *Extractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	if coords.Kind != domain.CoordinateParagraphRange {
		return "", fmt.Errorf("%w: docx cannot resolve %s coordinates", domain.ErrInvalidInput, coords.Kind)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	paras, err := paragraphs(path)
	if err != nil {
		return "", err
	}
	if coords.To > len(paras) {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("document has %d paragraphs, range ends at %d", len(paras), coords.To),
		}
	}
	return joinRange(paras, coords.From, coords.To), nil
}

// paragraphs returns every paragraph's text in document order.
func paragraphs(path string) ([]string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()

	var doc documentXML
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	paras := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range p.Runs {
			for _, t := range run.Text {
				b.WriteString(t.Content)
			}
		}
		paras = append(paras, b.String())
	}
	return paras, nil
}

func joinRange(paras []string, from, to int) string {
	return strings.Join(paras[from:to], "\n")
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}
