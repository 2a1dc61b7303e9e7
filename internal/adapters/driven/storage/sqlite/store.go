package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.folder-mcp/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folder-mcp", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FolderStore returns a FolderStore interface backed by this store.
func (s *Store) FolderStore() driven.FolderStore {
	return &folderStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ConnectionStateStore returns a ConnectionStateStore interface backed by this store.
func (s *Store) ConnectionStateStore() driven.ConnectionStateStore {
	return &connectionStateStore{store: s}
}

// IndexRunStore returns an IndexRunStore interface backed by this store.
func (s *Store) IndexRunStore() driven.IndexRunStore {
	return &indexRunStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// VectorIndex returns a VectorIndex that scans embeddings held in the
// chunks table.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Folder Store ====================

// folderStore implements driven.FolderStore.
type folderStore struct {
	store *Store
}

var _ driven.FolderStore = (*folderStore)(nil)

// Save stores or updates a folder record.
func (s *folderStore) Save(ctx context.Context, folder *domain.MonitoredFolder) error {
	if folder == nil || folder.ID == "" {
		return domain.ErrInvalidInput
	}

	configJSON, err := json.Marshal(folder.Config)
	if err != nil {
		return fmt.Errorf("marshalling folder config: %w", err)
	}

	var lastErrorJSON interface{}
	if folder.LastError != nil {
		data, err := json.Marshal(folder.LastError)
		if err != nil {
			return fmt.Errorf("marshalling last error: %w", err)
		}
		lastErrorJSON = string(data)
	}

	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO folders (id, path, config, state, last_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			config = excluded.config,
			state = excluded.state,
			last_error = excluded.last_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
	`, folder.ID, folder.Path, string(configJSON), string(folder.State),
		lastErrorJSON, nullableTime(folder.LastIndexedAt),
		folder.CreatedAt, folder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving folder: %w", err)
	}
	return nil
}

// Get retrieves a folder by ID.
func (s *folderStore) Get(ctx context.Context, id string) (*domain.MonitoredFolder, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, config, state, last_error, last_indexed_at, created_at, updated_at
		FROM folders WHERE id = ?
	`, id)

	return scanFolder(row)
}

// GetByPath retrieves a folder by its absolute path.
func (s *folderStore) GetByPath(ctx context.Context, path string) (*domain.MonitoredFolder, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, config, state, last_error, last_indexed_at, created_at, updated_at
		FROM folders WHERE path = ?
	`, path)

	return scanFolder(row)
}

// Delete removes a folder record. Documents and chunks cascade.
func (s *folderStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	return nil
}

// List returns all folders, removed ones excluded.
func (s *folderStore) List(ctx context.Context) ([]domain.MonitoredFolder, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, path, config, state, last_error, last_indexed_at, created_at, updated_at
		FROM folders WHERE state != ?
		ORDER BY created_at
	`, string(domain.FolderStateRemoved))
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.MonitoredFolder //nolint:prealloc // size unknown from query
	for rows.Next() {
		folder, err := scanFolderRows(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folders: %w", err)
	}

	return folders, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, folder_id, path, content_hash, mime_type, mod_time, size_bytes, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folder_id = excluded.folder_id,
			path = excluded.path,
			content_hash = excluded.content_hash,
			mime_type = excluded.mime_type,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.FolderID, doc.Path, doc.ContentHash, doc.MIME,
		nullableTime(doc.ModTime), doc.Size, nullableTime(doc.IndexedAt))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ReplaceChunks atomically swaps a document's chunk set. The document row
// is upserted in the same transaction, so a crash mid-index never leaves
// a fresh content hash pointing at stale chunks.
func (s *documentStore) ReplaceChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, folder_id, path, content_hash, mime_type, mod_time, size_bytes, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folder_id = excluded.folder_id,
			path = excluded.path,
			content_hash = excluded.content_hash,
			mime_type = excluded.mime_type,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.FolderID, doc.Path, doc.ContentHash, doc.MIME,
		nullableTime(doc.ModTime), doc.Size, nullableTime(doc.IndexedAt)); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, ordinal, coordinates, token_estimate, semantic, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		coordsJSON, err := json.Marshal(chunk.Coordinates)
		if err != nil {
			return fmt.Errorf("marshalling coordinates: %w", err)
		}

		semanticJSON, err := json.Marshal(chunk.Semantic)
		if err != nil {
			return fmt.Errorf("marshalling semantic metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.Ordinal,
			string(coordsJSON), chunk.TokenEstimate, string(semanticJSON), embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, folder_id, path, content_hash, mime_type, mod_time, size_bytes, indexed_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetDocumentByPath retrieves a document by folder and relative path.
func (s *documentStore) GetDocumentByPath(ctx context.Context, folderID, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, folder_id, path, content_hash, mime_type, mod_time, size_bytes, indexed_at
		FROM documents WHERE folder_id = ? AND path = ?
	`, folderID, path)

	return scanDocument(row)
}

// GetChunks retrieves all chunks for a document, ordered by ordinal.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, coordinates, token_estimate, semantic, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY ordinal
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, coordinates, token_estimate, semantic, embedding
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	var coordsJSON, semanticJSON sql.NullString
	var embeddingBlob []byte

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
		&coordsJSON, &chunk.TokenEstimate, &semanticJSON, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if err := decodeChunk(&chunk, coordsJSON, semanticJSON, embeddingBlob); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// GetChunkRange retrieves chunks with ordinal in [from, to), ordered by ordinal.
func (s *documentStore) GetChunkRange(ctx context.Context, documentID string, from, to int) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, coordinates, token_estimate, semantic, embedding
		FROM chunks WHERE document_id = ? AND ordinal >= ? AND ordinal < ?
		ORDER BY ordinal
	`, documentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying chunk range: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents in a folder's partition.
func (s *documentStore) ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, folder_id, path, content_hash, mime_type, mod_time, size_bytes, indexed_at
		FROM documents WHERE folder_id = ?
		ORDER BY path
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteFolderDocuments removes a folder's entire partition.
func (s *documentStore) DeleteFolderDocuments(ctx context.Context, folderID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE folder_id = ?", folderID)
	if err != nil {
		return fmt.Errorf("deleting folder documents: %w", err)
	}
	return nil
}

// CountDocuments returns the number of documents in a folder's partition.
func (s *documentStore) CountDocuments(ctx context.Context, folderID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE folder_id = ?", folderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// CountChunks returns the number of chunks in a folder's partition.
func (s *documentStore) CountChunks(ctx context.Context, folderID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks c
		JOIN documents d ON c.document_id = d.id
		WHERE d.folder_id = ?
	`, folderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullableTime returns nil for zero times, otherwise the time itself.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// scanFolder scans a single folder row.
func scanFolder(row *sql.Row) (*domain.MonitoredFolder, error) {
	var folder domain.MonitoredFolder
	var configJSON, state string
	var lastErrorJSON sql.NullString
	var lastIndexedAt, createdAt, updatedAt sql.NullTime

	if err := row.Scan(&folder.ID, &folder.Path, &configJSON, &state,
		&lastErrorJSON, &lastIndexedAt, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning folder: %w", err)
	}

	if err := decodeFolder(&folder, configJSON, state, lastErrorJSON,
		lastIndexedAt, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &folder, nil
}

// scanFolderRows scans a folder from *sql.Rows.
func scanFolderRows(rows *sql.Rows) (*domain.MonitoredFolder, error) {
	var folder domain.MonitoredFolder
	var configJSON, state string
	var lastErrorJSON sql.NullString
	var lastIndexedAt, createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&folder.ID, &folder.Path, &configJSON, &state,
		&lastErrorJSON, &lastIndexedAt, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning folder: %w", err)
	}

	if err := decodeFolder(&folder, configJSON, state, lastErrorJSON,
		lastIndexedAt, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &folder, nil
}

// decodeFolder fills the JSON and nullable columns of a folder record.
func decodeFolder(folder *domain.MonitoredFolder, configJSON, state string,
	lastErrorJSON sql.NullString, lastIndexedAt, createdAt, updatedAt sql.NullTime) error {
	if err := json.Unmarshal([]byte(configJSON), &folder.Config); err != nil {
		return fmt.Errorf("unmarshalling folder config: %w", err)
	}

	folder.State = domain.FolderState(state)

	if lastErrorJSON.Valid && lastErrorJSON.String != "" {
		var lastError domain.LastError
		if err := json.Unmarshal([]byte(lastErrorJSON.String), &lastError); err != nil {
			return fmt.Errorf("unmarshalling last error: %w", err)
		}
		folder.LastError = &lastError
	}

	if lastIndexedAt.Valid {
		folder.LastIndexedAt = lastIndexedAt.Time
	}
	if createdAt.Valid {
		folder.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		folder.UpdatedAt = updatedAt.Time
	}
	return nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var modTime, indexedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.FolderID, &doc.Path, &doc.ContentHash,
		&doc.MIME, &modTime, &doc.Size, &indexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if modTime.Valid {
		doc.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var modTime, indexedAt sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.FolderID, &doc.Path, &doc.ContentHash,
		&doc.MIME, &modTime, &doc.Size, &indexedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if modTime.Valid {
		doc.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}

	return &doc, nil
}

// scanChunks scans multiple chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var coordsJSON, semanticJSON sql.NullString
		var embeddingBlob []byte

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
			&coordsJSON, &chunk.TokenEstimate, &semanticJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		if err := decodeChunk(&chunk, coordsJSON, semanticJSON, embeddingBlob); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// decodeChunk fills the JSON and blob columns of a chunk record.
func decodeChunk(chunk *domain.Chunk, coordsJSON, semanticJSON sql.NullString, embeddingBlob []byte) error {
	if coordsJSON.Valid && coordsJSON.String != "" {
		if err := json.Unmarshal([]byte(coordsJSON.String), &chunk.Coordinates); err != nil {
			return fmt.Errorf("unmarshalling coordinates: %w", err)
		}
	}

	if semanticJSON.Valid && semanticJSON.String != "" {
		if err := json.Unmarshal([]byte(semanticJSON.String), &chunk.Semantic); err != nil {
			return fmt.Errorf("unmarshalling semantic metadata: %w", err)
		}
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return nil
}
