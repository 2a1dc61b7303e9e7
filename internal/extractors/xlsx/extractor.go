// Package xlsx segments spreadsheets by sheet name and row ranges.
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// DefaultChunkSize is the target chunk size in bytes of rendered rows.
const DefaultChunkSize = 1000

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles spreadsheets. A coordinate addresses a half-open row
// range on a named sheet; chunk text renders each row's cells joined with
// tabs and rows joined with newlines. Cell values come from excelize's
// formatted row reading, which is stable for an unchanged file.
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

// New creates a spreadsheet extractor.
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
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.oasis.opendocument.spreadsheet",
	}
}

// Segment walks every sheet and groups rows into chunk-sized ranges.
func (e *Extractor) Segment(ctx context.Context, path string) ([]driven.Segment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var segments []driven.Segment
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
		}

		from := 0
		size := 0
		for i, row := range rows {
			size += len(renderRow(row)) + 1
			if size < e.chunkSize && i < len(rows)-1 {
				continue
			}

			text := renderRows(rows, from, i+1)
			if strings.TrimSpace(text) != "" {
				segments = append(segments, driven.Segment{
					Coordinates: domain.ExtractionCoordinates{
						Kind:  domain.CoordinateSheetRows,
						Sheet: sheet,
						From:  from,
						To:    i + 1,
					},
					Text: text,
				})
			}
			from = i + 1
			size = 0
		}
	}
	return segments, nil
}

// Extract re-reads the sheet and renders the addressed row range.
func (e *Extractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	if coords.Kind != domain.CoordinateSheetRows {
		return "", fmt.Errorf("%w: xlsx cannot resolve %s coordinates", domain.ErrInvalidInput, coords.Kind)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(coords.Sheet)
	if err != nil || idx < 0 {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("sheet %q not found", coords.Sheet),
		}
	}

	rows, err := f.GetRows(coords.Sheet)
	if err != nil {
		return "", fmt.Errorf("reading sheet %q of %s: %w", coords.Sheet, path, err)
	}
	if coords.To > len(rows) {
		return "", &domain.CoordinateMismatchError{
			Path:        path,
			Coordinates: coords,
			Reason:      fmt.Sprintf("sheet %q has %d rows, range ends at %d", coords.Sheet, len(rows), coords.To),
		}
	}
	return renderRows(rows, coords.From, coords.To), nil
}

// renderRows joins the rows in [from, to) with newlines.
func renderRows(rows [][]string, from, to int) string {
	parts := make([]string, 0, to-from)
	for _, row := range rows[from:to] {
		parts = append(parts, renderRow(row))
	}
	return strings.Join(parts, "\n")
}

// renderRow joins a row's cells with tabs.
func renderRow(row []string) string {
	return strings.Join(row, "\t")
}
