// Package pdf segments PDF files by page-relative spans over each page's
// extracted text.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/extractors/segmentation"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents. A coordinate addresses a span within
// the plain text of one page; page text extraction is deterministic for
// an unchanged file, which is what makes the spans stable.
type Extractor struct {
	splitter *segmentation.Splitter
}

// New creates a PDF extractor.
func New(opts ...segmentation.Option) *Extractor {
	return &Extractor{splitter: segmentation.New(opts...)}
}

// MIMETypes returns the MIME types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{"application/pdf"}
}

// Segment splits every page's text into page-span segments.
func (e *Extractor) Segment(ctx context.Context, path string) ([]driven.Segment, error) {
	f, reader, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []driven.Segment
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageText, err := pageText(reader, pageNum)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", pageNum, path, err)
		}
		if pageText == "" {
			continue
		}

		for _, span := range e.splitter.Split(pageText) {
			segments = append(segments, driven.Segment{
				Coordinates: domain.ExtractionCoordinates{
					Kind:  domain.CoordinatePageSpan,
					Page:  pageNum,
					Start: span.Start,
					End:   span.End,
				},
				Text: pageText[span.Start:span.End],
			})
		}
	}
	return segments, nil
}

// Extract re-derives the page's text and returns the addressed span.
func (e *Extractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	if coords.Kind != domain.CoordinatePageSpan {
		return "", fmt.Errorf("%w: pdf cannot resolve %s coordinates", domain.ErrInvalidInput, coords.Kind)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	f, reader, err := open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if coords.Page > reader.NumPage() {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("document has %d pages", reader.NumPage()),
		}
	}

	text, err := pageText(reader, coords.Page)
	if err != nil {
		return "", fmt.Errorf("extracting page %d of %s: %w", coords.Page, path, err)
	}
	if coords.End > len(text) {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("page %d text is %d bytes, span ends at %d", coords.Page, len(text), coords.End),
		}
	}
	return text[coords.Start:coords.End], nil
}

func open(path string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, reader, nil
}

func pageText(reader *pdf.Reader, pageNum int) (string, error) {
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
