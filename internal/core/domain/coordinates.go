package domain

import "fmt"

// CoordinateKind identifies the format-specific coordinate scheme.
type CoordinateKind string

const (
	// CoordinateByteRange addresses a half-open byte span [Start, End)
	// in the raw file. Used for plain text and markdown.
	CoordinateByteRange CoordinateKind = "byte_range"

	// CoordinatePageSpan addresses a half-open span [Start, End) within
	// the extracted text of a single PDF page (1-based Page).
	CoordinatePageSpan CoordinateKind = "page_span"

	// CoordinateParagraphRange addresses a half-open paragraph index
	// range [From, To) in a word-processing document.
	CoordinateParagraphRange CoordinateKind = "paragraph_range"

	// CoordinateSheetRows addresses a half-open row range [From, To)
	// on a named spreadsheet sheet.
	CoordinateSheetRows CoordinateKind = "sheet_rows"

	// CoordinateSlide addresses a whole presentation slide (1-based).
	CoordinateSlide CoordinateKind = "slide"
)

// ExtractionCoordinates locate a chunk's exact text inside its source file.
// Only the fields relevant to Kind are populated; the struct is flat so it
// serialises as a single JSON object in the store.
//
// Coordinates must be sufficient to deterministically re-extract the chunk's
// byte-identical text from an unchanged source file.
type ExtractionCoordinates struct {
	// Kind selects the coordinate scheme.
	Kind CoordinateKind `json:"kind"`

	// Start and End are byte offsets (byte_range) or rune-safe offsets into
	// the page's extracted text (page_span). Half-open: [Start, End).
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`

	// Page is the 1-based PDF page number (page_span).
	Page int `json:"page,omitempty"`

	// From and To are half-open index ranges: paragraphs
	// (paragraph_range) or rows (sheet_rows).
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`

	// Sheet is the sheet name (sheet_rows).
	Sheet string `json:"sheet,omitempty"`

	// Slide is the 1-based slide number (slide).
	Slide int `json:"slide,omitempty"`
}

// Validate checks internal consistency of the coordinates.
// It does not (and cannot) check them against a source file; resolution
// failures against a file surface as CoordinateMismatchError from the
// reconstructor.
func (c ExtractionCoordinates) Validate() error {
	switch c.Kind {
	case CoordinateByteRange:
		if c.Start < 0 || c.End <= c.Start {
			return fmt.Errorf("%w: byte range [%d,%d)", ErrInvalidInput, c.Start, c.End)
		}
	case CoordinatePageSpan:
		if c.Page < 1 {
			return fmt.Errorf("%w: page %d", ErrInvalidInput, c.Page)
		}
		if c.Start < 0 || c.End <= c.Start {
			return fmt.Errorf("%w: page span [%d,%d)", ErrInvalidInput, c.Start, c.End)
		}
	case CoordinateParagraphRange:
		if c.From < 0 || c.To <= c.From {
			return fmt.Errorf("%w: paragraph range [%d,%d)", ErrInvalidInput, c.From, c.To)
		}
	case CoordinateSheetRows:
		if c.Sheet == "" {
			return fmt.Errorf("%w: empty sheet name", ErrInvalidInput)
		}
		if c.From < 0 || c.To <= c.From {
			return fmt.Errorf("%w: row range [%d,%d)", ErrInvalidInput, c.From, c.To)
		}
	case CoordinateSlide:
		if c.Slide < 1 {
			return fmt.Errorf("%w: slide %d", ErrInvalidInput, c.Slide)
		}
	default:
		return fmt.Errorf("%w: coordinate kind %q", ErrInvalidInput, c.Kind)
	}
	return nil
}

// String renders the coordinates for logs and error messages.
func (c ExtractionCoordinates) String() string {
	switch c.Kind {
	case CoordinateByteRange:
		return fmt.Sprintf("bytes[%d:%d]", c.Start, c.End)
	case CoordinatePageSpan:
		return fmt.Sprintf("page %d span[%d:%d]", c.Page, c.Start, c.End)
	case CoordinateParagraphRange:
		return fmt.Sprintf("paragraphs[%d:%d]", c.From, c.To)
	case CoordinateSheetRows:
		return fmt.Sprintf("sheet %q rows[%d:%d]", c.Sheet, c.From, c.To)
	case CoordinateSlide:
		return fmt.Sprintf("slide %d", c.Slide)
	default:
		return string(c.Kind)
	}
}
