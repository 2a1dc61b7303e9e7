package daemonclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/okets/folder-mcp-sub010/internal/api"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// The client serves the driving ports remotely, so anything built
// against them runs unchanged in or out of the daemon process.
var (
	_ driving.SearchService     = (*Client)(nil)
	_ driving.FolderService     = (*Client)(nil)
	_ driving.DocumentReader    = (*Client)(nil)
	_ driving.ConnectionArbiter = (*Client)(nil)
)

// Search implements driving.SearchService.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	req := api.SearchRequest{
		Query:         query,
		Limit:         opts.Limit,
		FolderIDs:     opts.FolderIDs,
		MIMETypes:     opts.MIMETypes,
		MinScore:      opts.MinScore,
		ContextChunks: opts.ContextChunks,
	}

	var resp api.SearchResponse
	if err := c.do(ctx, http.MethodPost, api.BasePath+"/search", req, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(resp.Results))
	for i := range resp.Results {
		results[i] = resp.Results[i].ToDomain()
	}
	return results, nil
}

// AddFolder implements driving.FolderService.
func (c *Client) AddFolder(ctx context.Context, path string, config domain.FolderConfig) (*domain.MonitoredFolder, error) {
	req := api.AddFolderRequest{
		Path:            path,
		EmbeddingModel:  config.EmbeddingModel,
		ExcludePatterns: config.ExcludePatterns,
	}

	var resp api.Folder
	if err := c.do(ctx, http.MethodPost, api.BasePath+"/folders", req, &resp); err != nil {
		return nil, err
	}
	folder := resp.ToDomain()
	return &folder, nil
}

// RemoveFolder implements driving.FolderService.
func (c *Client) RemoveFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, api.BasePath+"/folders/"+id, nil, nil)
}

// RescanFolder implements driving.FolderService.
func (c *Client) RescanFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, api.BasePath+"/folders/"+id+"/rescan", nil, nil)
}

// GetFolder implements driving.FolderService.
func (c *Client) GetFolder(ctx context.Context, id string) (*domain.MonitoredFolder, error) {
	var resp api.Folder
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/folders/"+id, nil, &resp); err != nil {
		return nil, err
	}
	folder := resp.ToDomain()
	return &folder, nil
}

// ListFolders implements driving.FolderService.
func (c *Client) ListFolders(ctx context.Context) ([]domain.MonitoredFolder, error) {
	var resp api.FolderList
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/folders", nil, &resp); err != nil {
		return nil, err
	}

	folders := make([]domain.MonitoredFolder, len(resp.Folders))
	for i := range resp.Folders {
		folders[i] = resp.Folders[i].ToDomain()
	}
	return folders, nil
}

// GetStatus implements driving.FolderService.
func (c *Client) GetStatus(ctx context.Context, id string) (*driving.FolderStatus, error) {
	var resp api.FolderStatus
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/folders/"+id+"/status", nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ListDocuments implements driving.DocumentReader.
func (c *Client) ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error) {
	var resp api.DocumentList
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/folders/"+folderID+"/documents", nil, &resp); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, len(resp.Documents))
	for i := range resp.Documents {
		docs[i] = resp.Documents[i].ToDomain()
	}
	return docs, nil
}

// GetDocument implements driving.DocumentReader.
func (c *Client) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var resp api.Document
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/documents/"+id, nil, &resp); err != nil {
		return nil, err
	}
	doc := resp.ToDomain()
	return &doc, nil
}

// GetDocumentText implements driving.DocumentReader.
func (c *Client) GetDocumentText(ctx context.Context, id string) (string, error) {
	var text string
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/documents/"+id+"/text", nil, &text); err != nil {
		return "", err
	}
	return text, nil
}

// RequestLowLatencyChannel implements driving.ConnectionArbiter.
func (c *Client) RequestLowLatencyChannel(ctx context.Context, clientID string) (domain.ConnectionDecision, error) {
	req := api.ClaimRequest{ClientID: clientID}

	var decision domain.ConnectionDecision
	if err := c.do(ctx, http.MethodPost, api.BasePath+"/connection/claim", req, &decision); err != nil {
		return domain.ConnectionDecision{}, err
	}
	return decision, nil
}

// Release implements driving.ConnectionArbiter.
func (c *Client) Release(ctx context.Context, clientID string) error {
	req := api.ClaimRequest{ClientID: clientID}
	return c.do(ctx, http.MethodPost, api.BasePath+"/connection/release", req, nil)
}

// SetPrimary implements driving.ConnectionArbiter.
func (c *Client) SetPrimary(ctx context.Context, clientID string) ([]driving.ConfigRewrite, error) {
	req := api.SetPrimaryRequest{ClientID: clientID}

	var resp api.SetPrimaryResponse
	if err := c.do(ctx, http.MethodPost, api.BasePath+"/connection/primary", req, &resp); err != nil {
		return nil, err
	}

	rewrites := make([]driving.ConfigRewrite, len(resp.Rewrites))
	for i, rw := range resp.Rewrites {
		rewrites[i] = driving.ConfigRewrite{
			ClientID: rw.ClientID,
			Mode:     domain.TransportMode(rw.Mode),
		}
		if rw.Error != "" {
			rewrites[i].Err = errors.New(rw.Error)
		}
	}
	return rewrites, nil
}

// State implements driving.ConnectionArbiter.
func (c *Client) State(ctx context.Context) (*domain.ClientConnectionState, error) {
	var state domain.ClientConnectionState
	if err := c.do(ctx, http.MethodGet, api.BasePath+"/connection", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
