package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
}

func TestMIMETypes(t *testing.T) {
	e := New()
	mimes := e.MIMETypes()
	assert.Equal(t, []string{"application/pdf"}, mimes)
}

// TestSegment_MissingFile tests the missing-file error path
func TestSegment_MissingFile(t *testing.T) {
	e := New()
	_, err := e.Segment(context.Background(), "/nonexistent/doc.pdf")
	assert.Error(t, err)
}

// TestSegment_NotAPDF tests that a non-PDF file fails to parse
func TestSegment_NotAPDF(t *testing.T) {
	e := New()
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := e.Segment(context.Background(), path)
	assert.Error(t, err)
}

// TestExtract_WrongKind tests kind checking before any file access
func TestExtract_WrongKind(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "/nonexistent/doc.pdf", domain.ExtractionCoordinates{
		Kind: domain.CoordinateByteRange, Start: 0, End: 10,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// TestExtract_InvalidCoordinates tests validation before file access
func TestExtract_InvalidCoordinates(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "/nonexistent/doc.pdf", domain.ExtractionCoordinates{
		Kind: domain.CoordinatePageSpan, Page: 0, Start: 0, End: 10,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
