package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for folder-mcp resources.
	uriScheme = "folder-mcp://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing monitored folders.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "folders",
		Name:        "folders",
		Description: "List of all monitored folders",
		MIMEType:    "application/json",
	}, s.handleFoldersResource)

	// Template for folder documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "folders/{folderId}/documents",
		Name:        "folder-documents",
		Description: "Documents indexed from a specific folder",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-text",
		Description: "Full text of a specific document, reconstructed from the source file",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)
}

// handleFoldersResource returns a list of all monitored folders.
func (s *Server) handleFoldersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	folders, err := s.ports.Folders.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	infos := make([]FolderOutput, len(folders))
	for i := range folders {
		infos[i] = folderOutput(&folders[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling folders: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns documents for a specific folder.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract folderId from URI: folder-mcp://folders/{folderId}/documents
	folderID := extractFolderID(req.Params.URI)
	if folderID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Documents.ListDocuments(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list.
	type docInfo struct {
		ID   string `json:"id"`
		Path string `json:"path"`
		MIME string `json:"mime"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:   docs[i].ID,
			Path: docs[i].Path,
			MIME: docs[i].MIME,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentTextResource returns the text of a specific document.
func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: folder-mcp://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Documents.GetDocumentText(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reading document text: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractFolderID extracts the folder ID from a URI like folder-mcp://folders/{folderId}/documents.
func extractFolderID(uri string) string {
	const prefix = uriScheme + "folders/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractDocumentID extracts the document ID from a URI like folder-mcp://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
