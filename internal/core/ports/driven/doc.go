// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the daemon to function:
//
//   - FolderStore: Monitored folder persistence
//   - DocumentStore: Document and chunk coordinate persistence
//   - ConnectionStateStore: Arbiter assignment persistence
//   - FolderScanner: Filesystem enumeration and change detection
//   - Extractor / ExtractorRegistry: Per-format segmentation and
//     coordinate-addressed text extraction
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Similarity search over stored embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil; the daemon degrades gracefully:
//
//   - ChangeWatcher: Filesystem event stream. Without it, changes are
//     picked up only by periodic rescans.
//   - AgentConfigWriter: Rewrites client configuration files on primary
//     reassignment. Without it, setPrimary only updates arbiter state.
//   - IndexRunStore: Per-folder indexing run history. Without it, status
//     reporting falls back to the folder record alone.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or service package
package driven
