package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okets/folder-mcp-sub010/cgo/hnsw"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/agentconfig"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/ai"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/config/file"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/storage/sqlite"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driving/httpapi"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driving/mcp"
	"github.com/okets/folder-mcp-sub010/internal/connectors/filesystem"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/services"
	"github.com/okets/folder-mcp-sub010/internal/extractors"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

const (
	// shutdownTimeout bounds the graceful HTTP drain on exit.
	shutdownTimeout = 10 * time.Second

	// startupPingTimeout bounds the advisory embedding backend probe.
	startupPingTimeout = 3 * time.Second

	// freePortSpan is how far above the default port the daemon scans
	// when asked to pick its own.
	freePortSpan = 100
)

// Runtime is the assembled daemon process: storage, embedding, folder
// lifecycle, scheduler and the HTTP listener with the MCP handler
// mounted, all built from one settings snapshot.
type Runtime struct {
	version  string
	stateDir string
	addr     string

	store     *sqlite.Store
	embedder  driven.EmbeddingService
	vectors   driven.VectorIndex
	watcher   *filesystem.Watcher
	lifecycle *services.LifecycleService
	scheduler *services.Scheduler
	httpSrv   *httpapi.Server
}

// NewRuntime assembles a daemon from the configuration under stateDir.
// An empty stateDir uses the default (~/.folder-mcp). The caller owns the
// returned runtime and must Close it.
func NewRuntime(stateDir, version string) (*Runtime, error) {
	if stateDir == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return nil, fmt.Errorf("resolving state directory: %w", err)
		}
		stateDir = dir
	}

	configStore, err := file.NewConfigStore(stateDir)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	port := settings.Daemon.Port
	if port == 0 {
		port, err = freePort(settings.Daemon.Host, domain.DefaultDaemonPort, domain.DefaultDaemonPort+freePortSpan)
		if err != nil {
			return nil, fmt.Errorf("picking daemon port: %w", err)
		}
	}

	r := &Runtime{
		version:  version,
		stateDir: stateDir,
		addr:     net.JoinHostPort(settings.Daemon.Host, strconv.Itoa(port)),
	}
	ok := false
	defer func() {
		if !ok {
			r.Close()
		}
	}()

	r.store, err = sqlite.NewStore(filepath.Join(stateDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	r.embedder, err = ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	r.vectors, err = buildVectorIndex(settings, r.store, stateDir, r.embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	r.watcher, err = filesystem.NewWatcher()
	if err != nil {
		// Without a watcher folders still index; they just will not
		// pick up changes until a rescan.
		logger.Warn("Change watching disabled: %v", err)
	}
	var changeWatcher driven.ChangeWatcher
	if r.watcher != nil {
		changeWatcher = r.watcher
	}

	var scannerOpts []filesystem.ScannerOption
	if mb := settings.Indexing.MaxFileSizeMB; mb > 0 {
		scannerOpts = append(scannerOpts, filesystem.WithMaxFileSize(int64(mb)<<20))
	}
	scanner := filesystem.NewScanner(scannerOpts...)

	registry := extractors.NewDefaultRegistry()
	reconstructor := services.NewReconstructor(r.store.FolderStore(), registry)

	lifecycleOpts := []services.LifecycleOption{services.WithRetryPolicy(settings.Retry)}
	if settings.Indexing.Workers > 0 {
		lifecycleOpts = append(lifecycleOpts, services.WithIndexWorkers(settings.Indexing.Workers))
	}
	r.lifecycle = services.NewLifecycleService(
		r.store.FolderStore(),
		r.store.DocumentStore(),
		scanner,
		changeWatcher,
		registry,
		r.embedder,
		r.vectors,
		r.store.IndexRunStore(),
		lifecycleOpts...,
	)

	search := services.NewSearchOrchestrator(
		r.store.FolderStore(),
		r.store.DocumentStore(),
		r.embedder,
		r.vectors,
		reconstructor,
	)
	documents := services.NewDocumentService(r.store.DocumentStore(), r.store.FolderStore(), reconstructor)
	auditor := services.NewAuditor(r.store.FolderStore(), r.store.DocumentStore(), r.embedder, reconstructor)
	r.scheduler = services.NewScheduler(settings.Scheduler, r.store.SchedulerStore(), r.lifecycle, auditor)

	fallbackAddr := "http://" + r.addr + "/mcp"
	arbiter := services.NewConnectionArbiter(r.store.ConnectionStateStore(), agentWriter(settings.Agents), fallbackAddr)

	mcpSrv, err := mcp.NewServer(&mcp.Ports{
		Search:    search,
		Folders:   r.lifecycle,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("building MCP server: %w", err)
	}

	r.httpSrv, err = httpapi.NewServer(&httpapi.Ports{
		Search:    search,
		Folders:   r.lifecycle,
		Documents: documents,
		Arbiter:   arbiter,
	}, httpapi.WithVersion(version), httpapi.WithMCPHandler(mcpSrv.HTTPHandler()))
	if err != nil {
		return nil, fmt.Errorf("building HTTP server: %w", err)
	}

	ok = true
	return r, nil
}

// Addr returns the address the daemon will listen on.
func (r *Runtime) Addr() string {
	return r.addr
}

// Run starts every component and blocks until ctx is cancelled or a stop
// request arrives, then shuts down gracefully.
func (r *Runtime) Run(ctx context.Context) error {
	if err := WritePIDFile(r.stateDir); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	defer func() {
		if err := RemovePIDFile(r.stateDir); err != nil {
			logger.Warn("Removing pid file: %v", err)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Advisory probe. An unreachable backend is an environment problem;
	// indexed folders stay intact and serve, so the daemon starts anyway.
	pingCtx, cancelPing := context.WithTimeout(runCtx, startupPingTimeout)
	if err := r.embedder.Ping(pingCtx); err != nil {
		logger.Warn("Embedding backend %s is unreachable: %v. Existing indexes remain intact; folders needing it will wait and report the error.",
			r.embedder.ModelName(), err)
	}
	cancelPing()

	if err := r.lifecycle.Start(runCtx); err != nil {
		return fmt.Errorf("starting folder lifecycle: %w", err)
	}
	defer r.lifecycle.Stop()

	go func() {
		if err := r.scheduler.Start(runCtx); err != nil {
			logger.Warn("Scheduler stopped: %v", err)
		}
	}()
	defer func() {
		if err := r.scheduler.Stop(); err != nil {
			logger.Warn("Stopping scheduler: %v", err)
		}
	}()

	if err := r.httpSrv.Start(r.addr); err != nil {
		return fmt.Errorf("starting HTTP server: %w", err)
	}

	if err := WriteAddrFile(r.stateDir, r.httpSrv.Addr()); err != nil {
		logger.Warn("Writing address file: %v", err)
	}
	defer func() {
		if err := RemoveAddrFile(r.stateDir); err != nil {
			logger.Warn("Removing address file: %v", err)
		}
	}()

	logger.Info("Daemon ready on http://%s (pid %d)", r.httpSrv.Addr(), os.Getpid())

	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case <-StopChannel():
		logger.Info("Stop requested")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := r.httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown: %v", err)
	}
	return nil
}

// Close releases the runtime's resources. Safe on a partially assembled
// runtime.
func (r *Runtime) Close() {
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			logger.Debug("Closing watcher: %v", err)
		}
	}
	if r.embedder != nil {
		if err := r.embedder.Close(); err != nil {
			logger.Debug("Closing embedder: %v", err)
		}
	}
	if r.vectors != nil {
		if err := r.vectors.Close(); err != nil {
			logger.Debug("Closing vector index: %v", err)
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logger.Debug("Closing store: %v", err)
		}
	}
}

// buildVectorIndex selects the vector search implementation. The scan
// index reads vectors straight out of the store; the native index keeps
// its own file next to the database.
func buildVectorIndex(settings *domain.AppSettings, store *sqlite.Store, stateDir string, dimensions int) (driven.VectorIndex, error) {
	path := filepath.Join(stateDir, "data", "vectors.hnsw")

	switch settings.VectorIndex.Backend {
	case domain.VectorIndexScan:
		return store.VectorIndex(), nil

	case domain.VectorIndexHNSW:
		idx, err := hnsw.New(path, dimensions, hnswPrecision(settings.VectorIndex.Precision))
		if err != nil {
			return nil, fmt.Errorf("opening vector index: %w", err)
		}
		return idx, nil

	default:
		idx, err := hnsw.New(path, dimensions, hnswPrecision(settings.VectorIndex.Precision))
		if err != nil {
			logger.Warn("Native vector index unavailable, scanning stored vectors instead: %v", err)
			return store.VectorIndex(), nil
		}
		return idx, nil
	}
}

// hnswPrecision maps the configured precision onto the native index's.
func hnswPrecision(p domain.VectorPrecision) hnsw.Precision {
	switch p {
	case domain.VectorPrecisionFloat32:
		return hnsw.PrecisionFloat32
	case domain.VectorPrecisionInt8:
		return hnsw.PrecisionInt8
	default:
		return hnsw.PrecisionFloat16
	}
}

// agentWriter builds the agent config writer from the registry, nil when
// no agents are registered.
func agentWriter(agents []domain.AgentRegistration) driven.AgentConfigWriter {
	if len(agents) == 0 {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		exe = "folder-mcp"
	}

	w := agentconfig.NewWriter(exe, "mcp", "serve")
	for _, a := range agents {
		w.Register(a.ID, agentconfig.ClientSpec{
			Path:   a.ConfigPath,
			Format: agentconfig.Format(a.Format),
		})
	}
	return w
}

// freePort scans for a bindable port, preferring the low end so restarts
// land on the same port when nothing else grabbed it.
func freePort(host string, start, end int) (int, error) {
	for port := start; port <= end; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			l.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port between %d and %d", start, end)
}
