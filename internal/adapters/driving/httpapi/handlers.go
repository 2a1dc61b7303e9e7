package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/okets/folder-mcp-sub010/internal/api"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}

// writeError maps a service error to its status code and error body.
func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Code: code})
}

// errorStatus classifies a service error into an HTTP status and a
// machine-readable code. The daemon client reverses this mapping.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, api.CodeNotFound
	case errors.Is(err, domain.ErrFolderRemoved):
		return http.StatusGone, api.CodeFolderRemoved
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, api.CodeAlreadyExists
	case errors.Is(err, domain.ErrIndexingInProgress):
		return http.StatusConflict, api.CodeIndexingInProgress
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, api.CodeInvalidInput
	case errors.Is(err, domain.ErrInvalidPath):
		return http.StatusBadRequest, api.CodeInvalidPath
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, api.CodeEmbeddingUnavailable
	default:
		return http.StatusInternalServerError, api.CodeInternal
	}
}

// decodeBody decodes the request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Version: s.version,
		PID:     os.Getpid(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req api.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	opts := domain.SearchOptions{
		Limit:         req.Limit,
		FolderIDs:     req.FolderIDs,
		MIMETypes:     req.MIMETypes,
		MinScore:      req.MinScore,
		ContextChunks: req.ContextChunks,
	}
	results, err := s.ports.Search.Search(r.Context(), req.Query, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.SearchResponse{
		Results: make([]api.SearchResult, len(results)),
		Count:   len(results),
	}
	for i := range results {
		resp.Results[i] = api.ResultFromDomain(&results[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.ports.Folders.ListFolders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.FolderList{
		Folders: make([]api.Folder, len(folders)),
		Count:   len(folders),
	}
	for i := range folders {
		resp.Folders[i] = api.FolderFromDomain(&folders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddFolder(w http.ResponseWriter, r *http.Request) {
	var req api.AddFolderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	config := domain.FolderConfig{
		EmbeddingModel:  req.EmbeddingModel,
		ExcludePatterns: req.ExcludePatterns,
	}
	folder, err := s.ports.Folders.AddFolder(r.Context(), req.Path, config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FolderFromDomain(folder))
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.ports.Folders.GetFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FolderFromDomain(folder))
}

func (s *Server) handleRemoveFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Folders.RemoveFolder(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFolderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.ports.Folders.GetStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.StatusFromDomain(status))
}

func (s *Server) handleRescanFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ports.Folders.RescanFolder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":    id,
		"state": string(domain.FolderStateScanning),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, domain.ErrNotFound)
		return
	}

	docs, err := s.ports.Documents.ListDocuments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.DocumentList{
		Documents: make([]api.Document, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		resp.Documents[i] = api.DocumentFromDomain(&docs[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, domain.ErrNotFound)
		return
	}

	doc, err := s.ports.Documents.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DocumentFromDomain(doc))
}

func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, domain.ErrNotFound)
		return
	}

	text, err := s.ports.Documents.GetDocumentText(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text)) //nolint:errcheck
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req api.ClaimRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ClientID == "" {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	// A denial is a decision, not an error: it still answers 200 so the
	// requester can read the fallback address and self-redirect.
	decision, err := s.ports.Arbiter.RequestLowLatencyChannel(r.Context(), req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req api.ClaimRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ClientID == "" {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	if err := s.ports.Arbiter.Release(r.Context(), req.ClientID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPrimary(w http.ResponseWriter, r *http.Request) {
	var req api.SetPrimaryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ClientID == "" {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	rewrites, err := s.ports.Arbiter.SetPrimary(r.Context(), req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.SetPrimaryResponse{
		PrimaryID: req.ClientID,
		Rewrites:  make([]api.ConfigRewrite, len(rewrites)),
	}
	for i, rw := range rewrites {
		resp.Rewrites[i] = api.ConfigRewrite{
			ClientID: rw.ClientID,
			Mode:     string(rw.Mode),
		}
		if rw.Err != nil {
			resp.Rewrites[i].Error = rw.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConnectionState(w http.ResponseWriter, r *http.Request) {
	state, err := s.ports.Arbiter.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
