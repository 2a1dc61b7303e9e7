package domain

import "time"

// AuditMismatch records one chunk whose stored embedding no longer
// matches the text its coordinates reconstruct.
type AuditMismatch struct {
	// FolderID is the folder the chunk belongs to.
	FolderID string `json:"folder_id"`

	// DocumentPath is the document's path relative to the folder root.
	DocumentPath string `json:"document_path"`

	// ChunkID is the drifted chunk.
	ChunkID string `json:"chunk_id"`

	// Reason describes the mismatch: a reconstruction failure or a
	// similarity below the drift threshold.
	Reason string `json:"reason"`
}

// AuditReport summarises one consistency audit pass over the store.
type AuditReport struct {
	// At is when the audit ran.
	At time.Time `json:"at"`

	// FoldersAudited is the number of active folders sampled.
	FoldersAudited int `json:"folders_audited"`

	// ChunksSampled is the total number of chunks re-embedded.
	ChunksSampled int `json:"chunks_sampled"`

	// Mismatches lists every drifted chunk found.
	Mismatches []AuditMismatch `json:"mismatches,omitempty"`
}

// Clean reports whether the audit found no drift.
func (r *AuditReport) Clean() bool {
	return len(r.Mismatches) == 0
}
