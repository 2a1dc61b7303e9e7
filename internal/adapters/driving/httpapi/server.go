// Package httpapi exposes the daemon's REST surface. Every client that
// does not hold the low-latency channel talks to the daemon here, and
// the streamable HTTP MCP endpoint is mounted alongside the REST routes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/api"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// ErrMissingFolderService is returned when the folder service is not provided.
var ErrMissingFolderService = errors.New("httpapi: folder service is required")

// ErrMissingArbiter is returned when the connection arbiter is not provided.
var ErrMissingArbiter = errors.New("httpapi: connection arbiter is required")

// Ports aggregates the driving ports served over REST.
type Ports struct {
	// Search provides semantic search over indexed folders.
	Search driving.SearchService

	// Folders manages the monitored folder set.
	Folders driving.FolderService

	// Documents serves document listings and reconstructed text.
	Documents driving.DocumentReader

	// Arbiter grants and reassigns the low-latency channel.
	Arbiter driving.ConnectionArbiter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Folders == nil {
		return ErrMissingFolderService
	}
	if p.Arbiter == nil {
		return ErrMissingArbiter
	}
	// Documents is optional; the document routes answer 404 without it
	return nil
}

// Server is the daemon's HTTP server.
type Server struct {
	ports      *Ports
	version    string
	mcpHandler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithMCPHandler mounts an MCP streamable HTTP handler at /mcp.
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mcpHandler = h
	}
}

// NewServer creates the REST server around the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:   ports,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the route mux, exposed for tests and for embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST "+api.BasePath+"/search", s.handleSearch)

	mux.HandleFunc("GET "+api.BasePath+"/folders", s.handleListFolders)
	mux.HandleFunc("POST "+api.BasePath+"/folders", s.handleAddFolder)
	mux.HandleFunc("GET "+api.BasePath+"/folders/{id}", s.handleGetFolder)
	mux.HandleFunc("DELETE "+api.BasePath+"/folders/{id}", s.handleRemoveFolder)
	mux.HandleFunc("GET "+api.BasePath+"/folders/{id}/status", s.handleFolderStatus)
	mux.HandleFunc("POST "+api.BasePath+"/folders/{id}/rescan", s.handleRescanFolder)
	mux.HandleFunc("GET "+api.BasePath+"/folders/{id}/documents", s.handleListDocuments)

	mux.HandleFunc("GET "+api.BasePath+"/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET "+api.BasePath+"/documents/{id}/text", s.handleDocumentText)

	mux.HandleFunc("POST "+api.BasePath+"/connection/claim", s.handleClaim)
	mux.HandleFunc("POST "+api.BasePath+"/connection/release", s.handleRelease)
	mux.HandleFunc("POST "+api.BasePath+"/connection/primary", s.handleSetPrimary)
	mux.HandleFunc("GET "+api.BasePath+"/connection", s.handleConnectionState)

	if s.mcpHandler != nil {
		mux.Handle("/mcp", s.mcpHandler)
	}

	return mux
}

// Start listens on addr and serves until Shutdown. If the addr's port
// is 0 an available port is chosen; Addr reports the bound address.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("http server: %v", err)
		}
	}()

	logger.Info("http api listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound address, or empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
