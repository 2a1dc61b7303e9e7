package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/embedding/synthetic"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/storage/memory"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// ==================== Mocks ====================
// Mock implementations are prefixed with search to avoid conflicts with
// the mocks in the other service test files.

type searchExtractKey struct {
	path   string
	coords domain.ExtractionCoordinates
}

// searchMockExtractor resolves coordinates from a fixed table, standing in
// for re-reading a source file.
type searchMockExtractor struct {
	mu    sync.Mutex
	texts map[searchExtractKey]string
	fail  map[string]bool
}

func newSearchMockExtractor() *searchMockExtractor {
	return &searchMockExtractor{
		texts: make(map[searchExtractKey]string),
		fail:  make(map[string]bool),
	}
}

func (m *searchMockExtractor) register(path string, coords domain.ExtractionCoordinates, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[searchExtractKey{path: path, coords: coords}] = text
}

// invalidate makes every extraction from path fail with a coordinate
// mismatch, as if the file changed after indexing.
func (m *searchMockExtractor) invalidate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[path] = true
}

func (m *searchMockExtractor) MIMETypes() []string { return []string{"text/plain"} }

func (m *searchMockExtractor) Segment(_ context.Context, _ string) ([]driven.Segment, error) {
	return nil, nil
}

func (m *searchMockExtractor) Extract(_ context.Context, path string, coords domain.ExtractionCoordinates) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[path] {
		return "", &domain.CoordinateMismatchError{Path: path, Coordinates: coords, Reason: "file changed after indexing"}
	}
	text, ok := m.texts[searchExtractKey{path: path, coords: coords}]
	if !ok {
		return "", &domain.CoordinateMismatchError{Path: path, Coordinates: coords, Reason: "coordinates out of range"}
	}
	return text, nil
}

type searchMockRegistry struct {
	extractor *searchMockExtractor
}

func (m *searchMockRegistry) ForMIME(mime string) (driven.Extractor, error) {
	if mime == "text/plain" || mime == "text/markdown" {
		return m.extractor, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMIME, mime)
}

func (m *searchMockRegistry) Supported() []string { return []string{"text/plain", "text/markdown"} }

// ==================== Fixture ====================

type searchFixture struct {
	folders   *memory.FolderStore
	docs      *memory.DocumentStore
	vectors   *memory.VectorIndex
	extractor *searchMockExtractor
	embedder  *synthetic.EmbeddingService
	svc       *SearchOrchestrator
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()
	f := &searchFixture{
		folders:   memory.NewFolderStore(),
		docs:      memory.NewDocumentStore(),
		vectors:   memory.NewVectorIndex(),
		extractor: newSearchMockExtractor(),
		embedder:  synthetic.NewEmbeddingService(64),
	}
	registry := &searchMockRegistry{extractor: f.extractor}
	reconstructor := NewReconstructor(f.folders, registry)
	f.svc = NewSearchOrchestrator(f.folders, f.docs, f.embedder, f.vectors, reconstructor)
	return f
}

func (f *searchFixture) addFolder(t *testing.T, id, path string, state domain.FolderState) {
	t.Helper()
	err := f.folders.Save(context.Background(), &domain.MonitoredFolder{
		ID:     id,
		Path:   path,
		State:  state,
		Config: domain.FolderConfig{EmbeddingModel: f.embedder.ModelName()},
	})
	require.NoError(t, err)
}

func (f *searchFixture) addDocument(t *testing.T, docID, folderID, relPath string) {
	t.Helper()
	err := f.docs.SaveDocument(context.Background(), &domain.Document{
		ID:       docID,
		FolderID: folderID,
		Path:     relPath,
		MIME:     "text/plain",
	})
	require.NoError(t, err)
}

// seedChunks indexes the given texts as consecutive chunks of a document:
// stored coordinates, registered extraction text and an embedded vector,
// exactly what a real indexing run leaves behind.
func (f *searchFixture) seedChunks(t *testing.T, docID string, texts ...string) []domain.Chunk {
	t.Helper()
	ctx := context.Background()

	doc, err := f.docs.GetDocument(ctx, docID)
	require.NoError(t, err)
	folder, err := f.folders.Get(ctx, doc.FolderID)
	require.NoError(t, err)
	absPath := filepath.Join(folder.Path, doc.Path)

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		coords := domain.ExtractionCoordinates{
			Kind:  domain.CoordinateByteRange,
			Start: i * 100,
			End:   i*100 + 100,
		}
		embedding, err := f.embedder.Embed(ctx, text)
		require.NoError(t, err)
		chunks[i] = domain.Chunk{
			ID:          fmt.Sprintf("%s-chunk-%d", docID, i),
			DocumentID:  docID,
			Ordinal:     i,
			Coordinates: coords,
			Embedding:   embedding,
		}
		f.extractor.register(absPath, coords, text)
	}
	require.NoError(t, f.docs.ReplaceChunks(ctx, doc, chunks))
	for i := range chunks {
		require.NoError(t, f.vectors.Add(ctx, chunks[i].ID, chunks[i].Embedding))
	}
	return chunks
}

// ==================== Tests ====================

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	f := newSearchFixture(t)

	results, err := f.svc.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/finance", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "report.txt")
	f.seedChunks(t, "doc-1",
		"quarterly revenue forecast and growth projections",
		"employee onboarding handbook and checklist",
		"kubernetes cluster deployment guide",
	)

	results, err := f.svc.Search(context.Background(), "revenue forecast projections", domain.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "doc-1-chunk-0", top.Chunk.ID)
	assert.Equal(t, "quarterly revenue forecast and growth projections", top.Snippet)
	assert.Equal(t, "doc-1", top.Document.ID)
	assert.Equal(t, "/data/finance", top.FolderPath)
	assert.Greater(t, top.Score, 0.0)
	assert.Nil(t, top.Chunk.Embedding, "result chunks must not carry raw vectors")

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_MinScoreFilters(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/finance", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "report.txt")
	f.seedChunks(t, "doc-1",
		"quarterly revenue forecast and growth projections",
		"kubernetes cluster deployment guide",
	)

	// An exact-text query scores 1.0 against its own chunk; everything
	// else falls well below the cutoff.
	results, err := f.svc.Search(context.Background(),
		"quarterly revenue forecast and growth projections",
		domain.SearchOptions{MinScore: 0.99})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1-chunk-0", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearch_LimitTruncates(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "notes.txt")
	f.seedChunks(t, "doc-1",
		"meeting notes about the budget",
		"more meeting notes about the budget",
		"further meeting notes about the budget",
		"final meeting notes about the budget",
	)

	results, err := f.svc.Search(context.Background(), "meeting notes budget", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_FolderFilter(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()
	f.addFolder(t, "folder-1", "/data/finance", domain.FolderStateActive)
	f.addFolder(t, "folder-2", "/data/legal", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "report.txt")
	f.addDocument(t, "doc-2", "folder-2", "contract.txt")
	f.seedChunks(t, "doc-1", "annual shareholder meeting summary")
	f.seedChunks(t, "doc-2", "annual shareholder meeting agreement")

	results, err := f.svc.Search(ctx, "annual shareholder meeting", domain.SearchOptions{
		FolderIDs: []string{"folder-2"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "folder-2", r.Document.FolderID)
	}

	// An unknown folder in the filter is skipped, not an error.
	results, err = f.svc.Search(ctx, "annual shareholder meeting", domain.SearchOptions{
		FolderIDs: []string{"no-such-folder"},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_MIMEFilter(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.addDocument(t, "doc-txt", "folder-1", "plan.txt")
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{
		ID:       "doc-md",
		FolderID: "folder-1",
		Path:     "plan.md",
		MIME:     "text/markdown",
	}))
	f.seedChunks(t, "doc-txt", "quarterly revenue targets for the sales team")
	f.seedChunks(t, "doc-md", "quarterly revenue targets for the sales team")

	// Without a filter both documents match.
	results, err := f.svc.Search(ctx, "quarterly revenue targets", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = f.svc.Search(ctx, "quarterly revenue targets", domain.SearchOptions{
		MIMETypes: []string{"text/plain"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-txt", results[0].Document.ID)
}

func TestSearch_OnlyActiveFoldersWithoutFilter(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-active", "/data/ok", domain.FolderStateActive)
	f.addFolder(t, "folder-errored", "/data/broken", domain.FolderStateError)
	f.addDocument(t, "doc-1", "folder-active", "a.txt")
	f.addDocument(t, "doc-2", "folder-errored", "b.txt")
	f.seedChunks(t, "doc-1", "shared vocabulary across both documents")
	f.seedChunks(t, "doc-2", "shared vocabulary across both documents")

	results, err := f.svc.Search(context.Background(), "shared vocabulary", domain.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "folder-active", r.Document.FolderID)
	}
}

func TestSearch_ExcludesModelMismatchedFolders(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()
	f.addFolder(t, "folder-1", "/data/old", domain.FolderStateActive)
	folder, err := f.folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	folder.Config.EmbeddingModel = "some-other-model"
	require.NoError(t, f.folders.Save(ctx, folder))
	f.addDocument(t, "doc-1", "folder-1", "a.txt")
	f.seedChunks(t, "doc-1", "vectors from an incompatible model")

	// Vectors embedded with a different model are not comparable to the
	// query vector, even when the folder is explicitly requested.
	results, err := f.svc.Search(ctx, "vectors from an incompatible model", domain.SearchOptions{
		FolderIDs: []string{"folder-1"},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_SkipsVectorsWithoutChunks(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "a.txt")
	f.seedChunks(t, "doc-1", "text that will disappear")

	// Deleting the document leaves the vector behind; search tolerates
	// the stale hit instead of failing.
	require.NoError(t, f.docs.DeleteDocument(ctx, "doc-1"))

	results, err := f.svc.Search(ctx, "text that will disappear", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ContextChunksWidenSnippet(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "a.txt")
	f.seedChunks(t, "doc-1",
		"opening paragraph of the document",
		"migration plan for the billing system",
		"closing remarks and action items",
	)

	results, err := f.svc.Search(context.Background(),
		"migration plan for the billing system",
		domain.SearchOptions{Limit: 1, ContextChunks: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := "opening paragraph of the document\n" +
		"migration plan for the billing system\n" +
		"closing remarks and action items"
	assert.Equal(t, want, results[0].Snippet)
	assert.Equal(t, "doc-1-chunk-1", results[0].Chunk.ID)
}

func TestSearch_CoordinateMismatchSurfaces(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)
	f.addDocument(t, "doc-1", "folder-1", "a.txt")
	f.seedChunks(t, "doc-1", "content that moves out from under its coordinates")

	f.extractor.invalidate(filepath.Join("/data/notes", "a.txt"))

	_, err := f.svc.Search(context.Background(),
		"content that moves out from under its coordinates",
		domain.SearchOptions{})
	require.Error(t, err)
	var mismatch *domain.CoordinateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "file changed after indexing", mismatch.Reason)
}

func TestSearch_ServicesUnavailable(t *testing.T) {
	f := newSearchFixture(t)
	f.addFolder(t, "folder-1", "/data/notes", domain.FolderStateActive)

	noEmbedder := NewSearchOrchestrator(f.folders, f.docs, nil, f.vectors, f.svc.reconstructor)
	_, err := noEmbedder.Search(context.Background(), "anything", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	noVectors := NewSearchOrchestrator(f.folders, f.docs, f.embedder, nil, f.svc.reconstructor)
	_, err = noVectors.Search(context.Background(), "anything", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}
