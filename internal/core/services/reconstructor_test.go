package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

func newReconstructor(f *auditFixture) *Reconstructor {
	return NewReconstructor(f.folders, &auditMockRegistry{extractor: f.extractor})
}

func TestReconstruct_SameCoordinatesSameText(t *testing.T) {
	f := newAuditFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	chunks := f.seedIndexed(t, "doc-1", "folder-1", "journal.txt",
		"the text that was embedded at indexing time",
	)
	r := newReconstructor(f)

	doc, err := f.docs.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)

	first, err := r.ReconstructChunk(context.Background(), doc, &chunks[0])
	require.NoError(t, err)
	assert.Equal(t, "the text that was embedded at indexing time", first)

	// The file has not changed, so a second pass yields identical bytes.
	second, err := r.Reconstruct(context.Background(), doc, chunks[0].Coordinates)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconstruct_NilDocument(t *testing.T) {
	f := newAuditFixture(t)
	r := newReconstructor(f)

	_, err := r.Reconstruct(context.Background(), nil, domain.ExtractionCoordinates{
		Kind: domain.CoordinateByteRange, Start: 0, End: 10,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconstruct_NilChunk(t *testing.T) {
	f := newAuditFixture(t)
	r := newReconstructor(f)

	_, err := r.ReconstructChunk(context.Background(), &domain.Document{ID: "doc-1"}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconstruct_RejectsMalformedCoordinates(t *testing.T) {
	f := newAuditFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.seedIndexed(t, "doc-1", "folder-1", "journal.txt", "content")
	r := newReconstructor(f)

	doc, err := f.docs.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)

	// An inverted byte range never reaches the extractor.
	_, err = r.Reconstruct(context.Background(), doc, domain.ExtractionCoordinates{
		Kind: domain.CoordinateByteRange, Start: 50, End: 10,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconstruct_UnknownFolder(t *testing.T) {
	f := newAuditFixture(t)
	r := newReconstructor(f)

	doc := &domain.Document{ID: "doc-1", FolderID: "gone", Path: "a.txt", MIME: "text/plain"}
	_, err := r.Reconstruct(context.Background(), doc, domain.ExtractionCoordinates{
		Kind: domain.CoordinateByteRange, Start: 0, End: 10,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconstruct_UnsupportedMIME(t *testing.T) {
	f := newAuditFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	r := newReconstructor(f)

	doc := &domain.Document{ID: "doc-1", FolderID: "folder-1", Path: "img.png", MIME: "image/png"}
	_, err := r.Reconstruct(context.Background(), doc, domain.ExtractionCoordinates{
		Kind: domain.CoordinateByteRange, Start: 0, End: 10,
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedMIME)
}

func TestReconstruct_StaleCoordinatesSurface(t *testing.T) {
	f := newAuditFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	chunks := f.seedIndexed(t, "doc-1", "folder-1", "journal.txt", "original")
	f.extractor.invalidate("/data/notes/journal.txt")
	r := newReconstructor(f)

	doc, err := f.docs.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)

	_, err = r.Reconstruct(context.Background(), doc, chunks[0].Coordinates)
	var mismatch *domain.CoordinateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "/data/notes/journal.txt", mismatch.Path)
	assert.Equal(t, chunks[0].Coordinates, mismatch.Coordinates)
}
