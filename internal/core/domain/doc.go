// Package domain defines the core business entities for folder-mcp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - MonitoredFolder: A folder under index management with its lifecycle state
//   - Document: An indexed file identified by its content hash
//   - Chunk: A searchable unit located by extraction coordinates (never text)
//   - ClientConnectionState: The connection arbiter's persisted assignment
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
