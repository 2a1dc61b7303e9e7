package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "folder-mcp-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestFolder creates a folder record to satisfy foreign key constraints.
func createTestFolder(t *testing.T, store *Store, folderID string) {
	t.Helper()
	ctx := context.Background()
	folder := &domain.MonitoredFolder{
		ID:    folderID,
		Path:  "/data/" + folderID,
		State: domain.FolderStateActive,
		Config: domain.FolderConfig{
			EmbeddingModel: "nomic-embed-text",
		},
	}
	require.NoError(t, store.FolderStore().Save(ctx, folder))
}

// testDocument builds a document row for a folder partition.
func testDocument(docID, folderID string) *domain.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Document{
		ID:          docID,
		FolderID:    folderID,
		Path:        "docs/" + docID + ".txt",
		ContentHash: "hash-" + docID,
		MIME:        "text/plain",
		ModTime:     now,
		Size:        128,
		IndexedAt:   now,
	}
}

// createTestDocument creates a document record to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID, folderID string) {
	t.Helper()
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), testDocument(docID, folderID)))
}

// makeTestChunk builds a chunk with byte-range coordinates and an embedding.
func makeTestChunk(id, docID string, ordinal int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		Ordinal:    ordinal,
		Coordinates: domain.ExtractionCoordinates{
			Kind:  domain.CoordinateByteRange,
			Start: ordinal * 100,
			End:   ordinal*100 + 100,
		},
		TokenEstimate: 25,
		Semantic: domain.SemanticMetadata{
			KeyPhrases:  []string{"revenue", "quarter"},
			Topics:      []string{"finance"},
			Readability: 62.5,
		},
		Embedding: embedding,
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "folder-mcp-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "metadata.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Verify schema_migrations table exists
	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")

	// Verify all expected tables exist
	tables := []string{
		"folders",
		"documents",
		"chunks",
		"connection_state",
		"index_runs",
	}

	for _, table := range tables {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "folder-mcp-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Opening the same database twice must not re-run migrations
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Verify foreign keys are enabled
	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.Close()
	assert.NoError(t, err)

	// Verify connection is closed
	err = store.db.Ping()
	assert.Error(t, err)
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Test all store interface getters
	assert.NotNil(t, store.FolderStore())
	assert.NotNil(t, store.DocumentStore())
	assert.NotNil(t, store.ConnectionStateStore())
	assert.NotNil(t, store.IndexRunStore())
	assert.NotNil(t, store.VectorIndex())
}

// ==================== FolderStore Tests ====================

func TestFolderStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	folderStore := store.FolderStore()

	folder := &domain.MonitoredFolder{
		ID:    "folder-1",
		Path:  "/data/reports",
		State: domain.FolderStatePending,
		Config: domain.FolderConfig{
			EmbeddingModel:  "nomic-embed-text",
			ExcludePatterns: []string{"*.log", "build"},
		},
	}

	// Save folder
	err := folderStore.Save(ctx, folder)
	require.NoError(t, err)
	assert.False(t, folder.CreatedAt.IsZero(), "Save should stamp CreatedAt")
	assert.False(t, folder.UpdatedAt.IsZero(), "Save should stamp UpdatedAt")

	// Get folder
	retrieved, err := folderStore.Get(ctx, folder.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	// Verify fields
	assert.Equal(t, folder.ID, retrieved.ID)
	assert.Equal(t, folder.Path, retrieved.Path)
	assert.Equal(t, domain.FolderStatePending, retrieved.State)
	assert.Equal(t, "nomic-embed-text", retrieved.Config.EmbeddingModel)
	assert.Equal(t, []string{"*.log", "build"}, retrieved.Config.ExcludePatterns)
	assert.Nil(t, retrieved.LastError)
}

func TestFolderStore_SaveUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	folderStore := store.FolderStore()

	folder := &domain.MonitoredFolder{
		ID:    "folder-1",
		Path:  "/data/reports",
		State: domain.FolderStatePending,
	}
	require.NoError(t, folderStore.Save(ctx, folder))

	// Transition to error with a recorded failure
	failedAt := time.Now().UTC().Truncate(time.Second)
	folder.State = domain.FolderStateError
	folder.LastError = &domain.LastError{
		Class:       domain.FailureEnvironment,
		Message:     "vector index library failed to load",
		Remediation: "reinstall the daemon to rebuild native components",
		At:          failedAt,
	}
	require.NoError(t, folderStore.Save(ctx, folder))

	retrieved, err := folderStore.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FolderStateError, retrieved.State)
	require.NotNil(t, retrieved.LastError)
	assert.Equal(t, domain.FailureEnvironment, retrieved.LastError.Class)
	assert.Equal(t, "vector index library failed to load", retrieved.LastError.Message)
	assert.Equal(t, "reinstall the daemon to rebuild native components", retrieved.LastError.Remediation)
	assert.WithinDuration(t, failedAt, retrieved.LastError.At, time.Second)
}

func TestFolderStore_GetByPath(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	folderStore := store.FolderStore()

	folder := &domain.MonitoredFolder{
		ID:    "folder-1",
		Path:  "/data/reports",
		State: domain.FolderStateActive,
	}
	require.NoError(t, folderStore.Save(ctx, folder))

	retrieved, err := folderStore.GetByPath(ctx, "/data/reports")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", retrieved.ID)

	_, err = folderStore.GetByPath(ctx, "/data/other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	retrieved, err := store.FolderStore().Get(context.Background(), "non-existent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, retrieved)
}

func TestFolderStore_DuplicatePath(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	folderStore := store.FolderStore()

	first := &domain.MonitoredFolder{ID: "folder-1", Path: "/data/reports", State: domain.FolderStateActive}
	require.NoError(t, folderStore.Save(ctx, first))

	// A second folder with the same path violates the unique constraint
	second := &domain.MonitoredFolder{ID: "folder-2", Path: "/data/reports", State: domain.FolderStatePending}
	assert.Error(t, folderStore.Save(ctx, second))
}

func TestFolderStore_Delete_CascadesToDocuments(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	chunks := []domain.Chunk{makeTestChunk("chunk-1", "doc-1", 0, []float32{0.1, 0.2})}
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), chunks))

	require.NoError(t, store.FolderStore().Delete(ctx, "folder-1"))

	_, err := docStore.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docStore.GetChunk(ctx, "chunk-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_List(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	folderStore := store.FolderStore()

	// Initially empty
	folders, err := folderStore.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	require.NoError(t, folderStore.Save(ctx, &domain.MonitoredFolder{
		ID: "folder-1", Path: "/data/a", State: domain.FolderStateActive,
	}))
	require.NoError(t, folderStore.Save(ctx, &domain.MonitoredFolder{
		ID: "folder-2", Path: "/data/b", State: domain.FolderStateError,
	}))
	require.NoError(t, folderStore.Save(ctx, &domain.MonitoredFolder{
		ID: "folder-3", Path: "/data/c", State: domain.FolderStateRemoved,
	}))

	folders, err = folderStore.List(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2, "removed folders are excluded")

	ids := []string{folders[0].ID, folders[1].ID}
	assert.Contains(t, ids, "folder-1")
	assert.Contains(t, ids, "folder-2")
}

// ==================== DocumentStore Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")

	docStore := store.DocumentStore()
	now := time.Now().UTC().Truncate(time.Second)
	doc := &domain.Document{
		ID:          "doc-1",
		FolderID:    "folder-1",
		Path:        "reports/q3.pdf",
		ContentHash: "abc123",
		MIME:        "application/pdf",
		ModTime:     now,
		Size:        4096,
		IndexedAt:   now,
	}
	require.NoError(t, docStore.SaveDocument(ctx, doc))

	retrieved, err := docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", retrieved.FolderID)
	assert.Equal(t, "reports/q3.pdf", retrieved.Path)
	assert.Equal(t, "abc123", retrieved.ContentHash)
	assert.Equal(t, "application/pdf", retrieved.MIME)
	assert.Equal(t, int64(4096), retrieved.Size)
	assert.WithinDuration(t, now, retrieved.ModTime, time.Second)
	assert.WithinDuration(t, now, retrieved.IndexedAt, time.Second)
}

func TestDocumentStore_GetDocumentByPath(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	retrieved, err := docStore.GetDocumentByPath(ctx, "folder-1", "docs/doc-1.txt")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", retrieved.ID)

	_, err = docStore.GetDocumentByPath(ctx, "folder-1", "docs/missing.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ReplaceChunks_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	chunks := []domain.Chunk{
		makeTestChunk("chunk-1", "doc-1", 0, []float32{0.1, 0.2, 0.3}),
		{
			ID:         "chunk-2",
			DocumentID: "doc-1",
			Ordinal:    1,
			Coordinates: domain.ExtractionCoordinates{
				Kind:  domain.CoordinateSheetRows,
				Sheet: "Q3 Forecast",
				From:  10,
				To:    20,
			},
			TokenEstimate: 40,
			Embedding:     []float32{0.4, 0.5, 0.6},
		},
	}
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), chunks))

	retrieved, err := docStore.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, "chunk-1", retrieved[0].ID)
	assert.Equal(t, 0, retrieved[0].Ordinal)
	assert.Equal(t, domain.CoordinateByteRange, retrieved[0].Coordinates.Kind)
	assert.Equal(t, 0, retrieved[0].Coordinates.Start)
	assert.Equal(t, 100, retrieved[0].Coordinates.End)
	assert.Equal(t, []string{"revenue", "quarter"}, retrieved[0].Semantic.KeyPhrases)
	assert.Equal(t, 62.5, retrieved[0].Semantic.Readability)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, retrieved[0].Embedding)

	assert.Equal(t, "chunk-2", retrieved[1].ID)
	assert.Equal(t, domain.CoordinateSheetRows, retrieved[1].Coordinates.Kind)
	assert.Equal(t, "Q3 Forecast", retrieved[1].Coordinates.Sheet)
	assert.Equal(t, 10, retrieved[1].Coordinates.From)
	assert.Equal(t, 20, retrieved[1].Coordinates.To)
}

func TestDocumentStore_ReplaceChunks_ReplacesWholesale(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	first := []domain.Chunk{
		makeTestChunk("chunk-1", "doc-1", 0, nil),
		makeTestChunk("chunk-2", "doc-1", 1, nil),
		makeTestChunk("chunk-3", "doc-1", 2, nil),
	}
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), first))

	second := []domain.Chunk{makeTestChunk("chunk-4", "doc-1", 0, nil)}
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), second))

	retrieved, err := docStore.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, "chunk-4", retrieved[0].ID)

	// The old chunk set is gone entirely
	_, err = docStore.GetChunk(ctx, "chunk-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ReplaceChunks_UpsertsDocumentRow(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")

	// No prior SaveDocument; the swap itself creates the document row.
	docStore := store.DocumentStore()
	doc := testDocument("doc-1", "folder-1")
	doc.ContentHash = "hash-v1"
	require.NoError(t, docStore.ReplaceChunks(ctx, doc,
		[]domain.Chunk{makeTestChunk("chunk-1", "doc-1", 0, nil)}))

	saved, err := docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-v1", saved.ContentHash)

	// Re-indexing updates the hash and the chunk set together.
	doc.ContentHash = "hash-v2"
	require.NoError(t, docStore.ReplaceChunks(ctx, doc,
		[]domain.Chunk{makeTestChunk("chunk-2", "doc-1", 0, nil)}))

	saved, err = docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-v2", saved.ContentHash)

	chunks, err := docStore.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "chunk-2", chunks[0].ID)

	assert.ErrorIs(t, docStore.ReplaceChunks(ctx, nil, nil), domain.ErrInvalidInput)
}

func TestDocumentStore_ReplaceChunks_EmptyClears(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"),
		[]domain.Chunk{makeTestChunk("chunk-1", "doc-1", 0, nil)}))
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), nil))

	retrieved, err := docStore.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, retrieved)
}

func TestDocumentStore_GetChunkRange(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	var chunks []domain.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, makeTestChunk("chunk-"+string(rune('a'+i)), "doc-1", i, nil))
	}
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), chunks))

	ranged, err := docStore.GetChunkRange(ctx, "doc-1", 1, 3)
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, 1, ranged[0].Ordinal)
	assert.Equal(t, 2, ranged[1].Ordinal)
}

func TestDocumentStore_DeleteDocument_CascadesToChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")

	docStore := store.DocumentStore()
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"),
		[]domain.Chunk{makeTestChunk("chunk-1", "doc-1", 0, nil)}))

	require.NoError(t, docStore.DeleteDocument(ctx, "doc-1"))

	count, err := docStore.CountChunks(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDocumentStore_PartitionIsolation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestFolder(t, store, "folder-2")
	createTestDocument(t, store, "doc-a", "folder-1")
	createTestDocument(t, store, "doc-b", "folder-1")
	createTestDocument(t, store, "doc-c", "folder-2")

	docStore := store.DocumentStore()

	docs, err := docStore.ListDocuments(ctx, "folder-1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	// Wiping one folder's partition leaves the other untouched
	require.NoError(t, docStore.DeleteFolderDocuments(ctx, "folder-1"))

	count, err := docStore.CountDocuments(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = docStore.CountDocuments(ctx, "folder-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDocumentStore_Counts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestFolder(t, store, "folder-1")
	createTestDocument(t, store, "doc-1", "folder-1")
	createTestDocument(t, store, "doc-2", "folder-1")

	docStore := store.DocumentStore()
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-1", "folder-1"), []domain.Chunk{
		makeTestChunk("chunk-1", "doc-1", 0, nil),
		makeTestChunk("chunk-2", "doc-1", 1, nil),
	}))
	require.NoError(t, docStore.ReplaceChunks(ctx, testDocument("doc-2", "folder-1"), []domain.Chunk{
		makeTestChunk("chunk-3", "doc-2", 0, nil),
	}))

	docCount, err := docStore.CountDocuments(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, 2, docCount)

	chunkCount, err := docStore.CountChunks(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, 3, chunkCount)
}

func TestDocumentStore_ChunkSchemaHasNoTextColumn(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// The chunks table must never grow a column that stores chunk text.
	rows, err := store.db.Query("PRAGMA table_info(chunks)")
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt interface{}
		require.NoError(t, rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())

	assert.NotContains(t, columns, "text")
	assert.NotContains(t, columns, "content")
	assert.Contains(t, columns, "coordinates")
	assert.Contains(t, columns, "embedding")
}

// ==================== ConnectionStateStore Tests ====================

func TestConnectionStateStore_LoadEmpty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	state, err := store.ConnectionStateStore().Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.PrimaryID)
	assert.NotNil(t, state.FallbackClients)
	assert.Empty(t, state.FallbackClients)
	assert.Nil(t, state.LastConflict)
}

func TestConnectionStateStore_SaveAndLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	connStore := store.ConnectionStateStore()

	conflictAt := time.Now().UTC().Truncate(time.Second)
	state := domain.NewClientConnectionState()
	state.PrimaryID = "claude-desktop"
	state.FallbackClients["cursor"] = "http://127.0.0.1:9900/mcp"
	state.RecordDenial(domain.ConflictRecord{RequesterID: "cursor", At: conflictAt})
	state.RecordDenial(domain.ConflictRecord{RequesterID: "vscode", At: conflictAt.Add(time.Minute)})
	state.UpdatedAt = conflictAt

	require.NoError(t, connStore.Save(ctx, state))

	loaded, err := connStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "claude-desktop", loaded.PrimaryID)
	assert.Equal(t, "http://127.0.0.1:9900/mcp", loaded.FallbackClients["cursor"])
	require.NotNil(t, loaded.LastConflict)
	assert.Equal(t, "vscode", loaded.LastConflict.RequesterID)

	// The denial log round-trips in order.
	require.Len(t, loaded.Denials, 2)
	assert.Equal(t, "cursor", loaded.Denials[0].RequesterID)
	assert.Equal(t, "vscode", loaded.Denials[1].RequesterID)
	assert.WithinDuration(t, conflictAt, loaded.Denials[0].At, time.Second)
}

func TestConnectionStateStore_SaveOverwrites(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	connStore := store.ConnectionStateStore()

	state := domain.NewClientConnectionState()
	state.PrimaryID = "claude-desktop"
	require.NoError(t, connStore.Save(ctx, state))

	state.PrimaryID = "cursor"
	require.NoError(t, connStore.Save(ctx, state))

	loaded, err := connStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor", loaded.PrimaryID)
}
