package api

import (
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// FolderFromDomain converts a folder record to its wire view.
func FolderFromDomain(f *domain.MonitoredFolder) Folder {
	out := Folder{
		ID:              f.ID,
		Path:            f.Path,
		State:           string(f.State),
		EmbeddingModel:  f.Config.EmbeddingModel,
		ExcludePatterns: f.Config.ExcludePatterns,
		LastIndexedAt:   f.LastIndexedAt,
		CreatedAt:       f.CreatedAt,
	}
	if f.LastError != nil {
		out.LastError = &FolderError{
			Class:       string(f.LastError.Class),
			Message:     f.LastError.Message,
			Remediation: f.LastError.Remediation,
			At:          f.LastError.At,
		}
	}
	return out
}

// ToDomain converts a wire folder back to a domain record.
func (f Folder) ToDomain() domain.MonitoredFolder {
	out := domain.MonitoredFolder{
		ID:   f.ID,
		Path: f.Path,
		Config: domain.FolderConfig{
			EmbeddingModel:  f.EmbeddingModel,
			ExcludePatterns: f.ExcludePatterns,
		},
		State:         domain.FolderState(f.State),
		LastIndexedAt: f.LastIndexedAt,
		CreatedAt:     f.CreatedAt,
	}
	if f.LastError != nil {
		out.LastError = &domain.LastError{
			Class:       domain.FailureClass(f.LastError.Class),
			Message:     f.LastError.Message,
			Remediation: f.LastError.Remediation,
			At:          f.LastError.At,
		}
	}
	return out
}

// StatusFromDomain converts a folder status to its wire view.
func StatusFromDomain(s *driving.FolderStatus) FolderStatus {
	out := FolderStatus{
		Folder:        FolderFromDomain(&s.Folder),
		DocumentCount: s.DocumentCount,
		ChunkCount:    s.ChunkCount,
	}
	if s.LastRun != nil {
		out.LastRun = &IndexRun{
			StartedAt:     s.LastRun.StartedAt,
			EndedAt:       s.LastRun.EndedAt,
			Success:       s.LastRun.Success,
			Error:         s.LastRun.Error,
			FilesSeen:     s.LastRun.FilesSeen,
			FilesIndexed:  s.LastRun.FilesIndexed,
			ChunksWritten: s.LastRun.ChunksWritten,
		}
	}
	return out
}

// ToDomain converts a wire status back to the driving view.
func (s FolderStatus) ToDomain() *driving.FolderStatus {
	out := &driving.FolderStatus{
		Folder:        s.Folder.ToDomain(),
		DocumentCount: s.DocumentCount,
		ChunkCount:    s.ChunkCount,
	}
	if s.LastRun != nil {
		out.LastRun = &domain.IndexRun{
			FolderID:      s.Folder.ID,
			StartedAt:     s.LastRun.StartedAt,
			EndedAt:       s.LastRun.EndedAt,
			Success:       s.LastRun.Success,
			Error:         s.LastRun.Error,
			FilesSeen:     s.LastRun.FilesSeen,
			FilesIndexed:  s.LastRun.FilesIndexed,
			ChunksWritten: s.LastRun.ChunksWritten,
		}
	}
	return out
}

// DocumentFromDomain converts a document record to its wire view.
func DocumentFromDomain(d *domain.Document) Document {
	return Document{
		ID:        d.ID,
		FolderID:  d.FolderID,
		Path:      d.Path,
		MIME:      d.MIME,
		Size:      d.Size,
		ModTime:   d.ModTime,
		IndexedAt: d.IndexedAt,
	}
}

// ToDomain converts a wire document back to a domain record.
func (d Document) ToDomain() domain.Document {
	return domain.Document{
		ID:        d.ID,
		FolderID:  d.FolderID,
		Path:      d.Path,
		MIME:      d.MIME,
		Size:      d.Size,
		ModTime:   d.ModTime,
		IndexedAt: d.IndexedAt,
	}
}

// ResultFromDomain converts a search hit to its wire view.
func ResultFromDomain(r *domain.SearchResult) SearchResult {
	return SearchResult{
		DocumentID: r.Document.ID,
		ChunkID:    r.Chunk.ID,
		Path:       r.Document.Path,
		FolderPath: r.FolderPath,
		Score:      r.Score,
		Snippet:    r.Snippet,
	}
}

// ToDomain converts a wire search hit back to a domain result. Only the
// fields that crossed the wire are populated.
func (r SearchResult) ToDomain() domain.SearchResult {
	return domain.SearchResult{
		Document:   domain.Document{ID: r.DocumentID, Path: r.Path},
		Chunk:      domain.Chunk{ID: r.ChunkID, DocumentID: r.DocumentID},
		Score:      r.Score,
		Snippet:    r.Snippet,
		FolderPath: r.FolderPath,
	}
}
