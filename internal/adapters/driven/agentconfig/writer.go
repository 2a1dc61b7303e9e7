// Package agentconfig rewrites AI agents' local MCP configuration files
// so each client is pointed at the transport the connection arbiter
// assigned it. Every supported agent keeps its own self-contained file,
// which is why per-client writes can succeed or fail independently.
package agentconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// DefaultServerName is the key folder-mcp registers under in an agent's
// MCP server table.
const DefaultServerName = "folder-mcp"

// ErrUnknownClient is returned when no configuration file is registered
// for a client ID.
var ErrUnknownClient = errors.New("no agent config registered for client")

// Format identifies an agent config file's on-disk schema.
type Format string

const (
	// FormatJSON is the mcpServers object used by Claude Desktop and
	// Cursor style configs.
	FormatJSON Format = "json"

	// FormatYAML is the mcpServers list used by Continue style configs.
	FormatYAML Format = "yaml"
)

// ClientSpec locates one agent's MCP configuration file.
type ClientSpec struct {
	// Path is the absolute path of the agent's config file.
	Path string

	// Format selects the file schema.
	Format Format

	// ServerName overrides the entry name, DefaultServerName when empty.
	ServerName string
}

// Ensure Writer implements the interface.
var _ driven.AgentConfigWriter = (*Writer)(nil)

// Writer implements driven.AgentConfigWriter for a registry of known
// agents. Rewrites touch only the folder-mcp entry; every other server
// and setting in the user's file is preserved.
type Writer struct {
	command string
	args    []string

	mu      sync.Mutex
	clients map[string]ClientSpec
}

// NewWriter creates a writer. command and args are what a stdio-mode
// entry tells the agent to execute.
func NewWriter(command string, args ...string) *Writer {
	return &Writer{
		command: command,
		args:    args,
		clients: make(map[string]ClientSpec),
	}
}

// Register associates a client ID with its configuration file.
func (w *Writer) Register(clientID string, spec ClientSpec) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if spec.ServerName == "" {
		spec.ServerName = DefaultServerName
	}
	w.clients[clientID] = spec
}

// WriteConfig updates the named client's configuration to use the given
// transport mode and address.
func (w *Writer) WriteConfig(_ context.Context, clientID string, mode domain.TransportMode, address string) error {
	w.mu.Lock()
	spec, ok := w.clients[clientID]
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
	}

	entry, err := w.serverEntry(mode, address)
	if err != nil {
		return err
	}

	switch spec.Format {
	case FormatYAML:
		return w.writeYAML(spec, entry)
	default:
		return w.writeJSON(spec, entry)
	}
}

// serverEntry builds the agent-facing server definition for a transport.
func (w *Writer) serverEntry(mode domain.TransportMode, address string) (map[string]any, error) {
	switch mode {
	case domain.TransportStdio:
		entry := map[string]any{"command": w.command}
		if len(w.args) > 0 {
			entry["args"] = w.args
		}
		return entry, nil
	case domain.TransportHTTP:
		if address == "" {
			return nil, fmt.Errorf("http transport entry requires an address")
		}
		return map[string]any{"url": address}, nil
	default:
		return nil, fmt.Errorf("unsupported transport mode %q", mode)
	}
}

// writeJSON merges the entry into an mcpServers object, creating the
// file if needed. A file that fails to parse is left untouched; a
// malformed config must surface, not be replaced.
func (w *Writer) writeJSON(spec ClientSpec, entry map[string]any) error {
	root := make(map[string]any)

	data, err := os.ReadFile(spec.Path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parse %s: %w", spec.Path, err)
		}
	case os.IsNotExist(err):
		// Start a fresh config
	default:
		return fmt.Errorf("read %s: %w", spec.Path, err)
	}

	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	servers[spec.ServerName] = entry
	root["mcpServers"] = servers

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", spec.Path, err)
	}
	return writeFileAtomic(spec.Path, append(out, '\n'))
}

// writeYAML merges the entry into an mcpServers list keyed by name.
func (w *Writer) writeYAML(spec ClientSpec, entry map[string]any) error {
	root := make(map[string]any)

	data, err := os.ReadFile(spec.Path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parse %s: %w", spec.Path, err)
		}
		if root == nil {
			root = make(map[string]any)
		}
	case os.IsNotExist(err):
		// Start a fresh config
	default:
		return fmt.Errorf("read %s: %w", spec.Path, err)
	}

	named := map[string]any{"name": spec.ServerName}
	for k, v := range entry {
		named[k] = v
	}

	servers, _ := root["mcpServers"].([]any)
	replaced := false
	for i, item := range servers {
		m, ok := item.(map[string]any)
		if ok && m["name"] == spec.ServerName {
			servers[i] = named
			replaced = true
			break
		}
	}
	if !replaced {
		servers = append(servers, named)
	}
	root["mcpServers"] = servers

	out, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode %s: %w", spec.Path, err)
	}
	return writeFileAtomic(spec.Path, out)
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// cannot leave the agent with a half-written config.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
