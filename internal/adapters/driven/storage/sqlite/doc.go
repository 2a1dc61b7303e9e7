// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - FolderStore: Monitored folder persistence
//   - DocumentStore: Document and chunk coordinate persistence
//   - ConnectionStateStore: Arbiter assignment persistence
//   - IndexRunStore: Indexing run history
//   - VectorIndex: Exhaustive cosine search over stored embeddings
//
// Chunk rows carry extraction coordinates, semantic metadata and embedding
// vectors but never chunk text. Text is reconstructed on demand from the
// coordinates against the source file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.folder-mcp/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
