package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Ensure Auditor implements the interface.
var _ driving.ConsistencyAuditor = (*Auditor)(nil)

const (
	// DefaultAuditSampleSize bounds how many chunks one audit pass
	// re-embeds per folder.
	DefaultAuditSampleSize = 16

	// auditDriftThreshold is the minimum similarity between a chunk's
	// stored embedding and the re-embedding of its reconstructed text
	// before the chunk counts as drifted.
	auditDriftThreshold = 0.98
)

// Auditor implements driving.ConsistencyAuditor by sampling chunks
// from each active folder, reconstructing their text from coordinates
// and comparing a fresh embedding against the stored one.
type Auditor struct {
	folderStore   driven.FolderStore
	docStore      driven.DocumentStore
	embedder      driven.EmbeddingService
	reconstructor *Reconstructor

	sampleSize int

	mu   sync.Mutex
	last *domain.AuditReport
}

// AuditorOption configures optional auditor behaviour.
type AuditorOption func(*Auditor)

// WithAuditSampleSize overrides the per-folder sample budget.
func WithAuditSampleSize(n int) AuditorOption {
	return func(a *Auditor) {
		if n > 0 {
			a.sampleSize = n
		}
	}
}

// NewAuditor creates a consistency auditor.
func NewAuditor(
	folderStore driven.FolderStore,
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	reconstructor *Reconstructor,
	opts ...AuditorOption,
) *Auditor {
	a := &Auditor{
		folderStore:   folderStore,
		docStore:      docStore,
		embedder:      embedder,
		reconstructor: reconstructor,
		sampleSize:    DefaultAuditSampleSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit runs one pass over all active folders. Drift is reported, not
// returned as an error; only infrastructure failures abort the pass.
func (a *Auditor) Audit(ctx context.Context) (*domain.AuditReport, error) {
	if a.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	report := &domain.AuditReport{At: time.Now()}

	folders, err := a.folderStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	for i := range folders {
		folder := &folders[i]
		if folder.State != domain.FolderStateActive {
			continue
		}
		if err := a.auditFolder(ctx, folder, report); err != nil {
			return nil, err
		}
		report.FoldersAudited++
	}

	a.mu.Lock()
	a.last = report
	a.mu.Unlock()

	return report, nil
}

// LastReport returns a copy of the most recent report, or nil when no
// audit has completed yet.
func (a *Auditor) LastReport() *domain.AuditReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return nil
	}
	out := *a.last
	out.Mismatches = append([]domain.AuditMismatch(nil), a.last.Mismatches...)
	return &out
}

func (a *Auditor) auditFolder(ctx context.Context, folder *domain.MonitoredFolder, report *domain.AuditReport) error {
	docs, err := a.docStore.ListDocuments(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("list documents for %s: %w", folder.Path, err)
	}

	budget := a.sampleSize
	for i := range docs {
		if budget <= 0 {
			return nil
		}
		doc := &docs[i]

		chunks, err := a.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("load chunks for %s: %w", doc.Path, err)
		}
		if len(chunks) == 0 {
			continue
		}

		// Boundary chunks drift first: an append moves a document's
		// tail, an edit near the top shifts everything after it.
		sample := []domain.Chunk{chunks[0]}
		if len(chunks) > 1 {
			sample = append(sample, chunks[len(chunks)-1])
		}

		for j := range sample {
			if budget <= 0 {
				return nil
			}
			budget--
			report.ChunksSampled++
			if err := a.verifyChunk(ctx, folder, doc, &sample[j], report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Auditor) verifyChunk(ctx context.Context, folder *domain.MonitoredFolder, doc *domain.Document, chunk *domain.Chunk, report *domain.AuditReport) error {
	text, err := a.reconstructor.ReconstructChunk(ctx, doc, chunk)
	if err != nil {
		var mismatch *domain.CoordinateMismatchError
		if errors.As(err, &mismatch) {
			report.Mismatches = append(report.Mismatches, domain.AuditMismatch{
				FolderID:     folder.ID,
				DocumentPath: doc.Path,
				ChunkID:      chunk.ID,
				Reason:       mismatch.Reason,
			})
			return nil
		}
		return fmt.Errorf("reconstruct %s: %w", doc.Path, err)
	}

	vec, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("re-embed %s: %w", doc.Path, err)
	}

	similarity := domain.CosineSimilarity(vec, chunk.Embedding)
	if similarity < auditDriftThreshold {
		report.Mismatches = append(report.Mismatches, domain.AuditMismatch{
			FolderID:     folder.ID,
			DocumentPath: doc.Path,
			ChunkID:      chunk.ID,
			Reason:       fmt.Sprintf("embedding similarity %.3f below threshold", similarity),
		})
	}
	return nil
}
