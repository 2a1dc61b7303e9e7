package driving

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// ConsistencyAuditor checks that stored chunk embeddings still match
// the text their coordinates reconstruct. Chunk rows carry no text, so
// a file edited while the daemon was down leaves vectors describing
// content that is gone; the audit finds such drift before a search
// serves it.
type ConsistencyAuditor interface {
	// Audit runs one audit pass over all active folders and returns
	// the report. A report with mismatches is not an error.
	Audit(ctx context.Context) (*domain.AuditReport, error)

	// LastReport returns the most recent report, or nil when no audit
	// has completed yet.
	LastReport() *domain.AuditReport
}
