package domain

const unknownDescription = "Unknown"

// DefaultDaemonPort is the port the daemon binds when none is configured.
const DefaultDaemonPort = 9042

// EmbeddingBackend identifies an embedding service implementation.
type EmbeddingBackend string

// Available embedding backends.
const (
	// EmbeddingOllama is a local Ollama instance.
	EmbeddingOllama EmbeddingBackend = "ollama"

	// EmbeddingOpenAICompat is any server speaking the OpenAI embeddings
	// API, local (LM Studio, llama.cpp) or hosted.
	EmbeddingOpenAICompat EmbeddingBackend = "openai"

	// EmbeddingSynthetic derives vectors from content hashes. Fully
	// offline; for tests and for installs without a model server.
	EmbeddingSynthetic EmbeddingBackend = "synthetic"
)

// IsValid returns true if the backend is recognised.
func (b EmbeddingBackend) IsValid() bool {
	switch b {
	case EmbeddingOllama, EmbeddingOpenAICompat, EmbeddingSynthetic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b EmbeddingBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b EmbeddingBackend) Description() string {
	switch b {
	case EmbeddingOllama:
		return "Ollama (local model server)"
	case EmbeddingOpenAICompat:
		return "OpenAI-compatible API"
	case EmbeddingSynthetic:
		return "Synthetic (offline, hash-derived)"
	default:
		return unknownDescription
	}
}

// VectorIndexBackend selects how stored embeddings are searched.
type VectorIndexBackend string

// Available vector index backends.
const (
	// VectorIndexAuto uses the native index when the build carries it and
	// falls back to scanning stored vectors otherwise.
	VectorIndexAuto VectorIndexBackend = "auto"

	// VectorIndexHNSW requires the native HNSW index; startup fails
	// without it.
	VectorIndexHNSW VectorIndexBackend = "hnsw"

	// VectorIndexScan always scans stored vectors. Exact but linear.
	VectorIndexScan VectorIndexBackend = "scan"
)

// IsValid returns true if the backend is recognised.
func (b VectorIndexBackend) IsValid() bool {
	switch b {
	case VectorIndexAuto, VectorIndexHNSW, VectorIndexScan:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorIndexBackend) String() string {
	return string(b)
}

// VectorPrecision defines the storage precision for vector embeddings.
type VectorPrecision string

// Available vector precision options.
const (
	// VectorPrecisionFloat32 stores vectors at full precision.
	VectorPrecisionFloat32 VectorPrecision = "float32"

	// VectorPrecisionFloat16 stores vectors at half precision (50% storage savings).
	VectorPrecisionFloat16 VectorPrecision = "float16"

	// VectorPrecisionInt8 stores vectors at 8-bit precision (75% storage savings).
	VectorPrecisionInt8 VectorPrecision = "int8"
)

// IsValid returns true if the precision is recognised.
func (p VectorPrecision) IsValid() bool {
	switch p {
	case VectorPrecisionFloat32, VectorPrecisionFloat16, VectorPrecisionInt8:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p VectorPrecision) String() string {
	return string(p)
}

// DaemonSettings holds the daemon's listen address.
type DaemonSettings struct {
	// Host is the interface the daemon binds.
	Host string

	// Port is the TCP port. Zero means pick a free port near the default.
	Port int
}

// EmbeddingSettings holds embedding backend configuration.
type EmbeddingSettings struct {
	// Backend is the embedding service implementation.
	Backend EmbeddingBackend

	// Model is the embedding model name. Ignored by the synthetic backend.
	Model string

	// BaseURL is the API endpoint. Empty uses the backend's default.
	BaseURL string

	// APIKey is sent as a bearer token (OpenAI-compatible backend only).
	APIKey string

	// Dimensions is the vector size. Zero resolves from the model name.
	Dimensions int

	// MaxConcurrent caps in-flight embed requests during indexing.
	// Zero uses the backend's default.
	MaxConcurrent int

	// RequestsPerSecond throttles embed requests. Zero means no limit.
	RequestsPerSecond float64
}

// ResolvedDimensions returns the configured dimensions, the known size of
// the configured model, or the ubiquitous 768 when neither is set.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	if d := EmbeddingModelDimensions()[e.Model]; d > 0 {
		return d
	}
	return 768
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the search implementation.
	Backend VectorIndexBackend

	// Precision is the native index's storage precision.
	// Default is float16 (best balance of size vs quality).
	Precision VectorPrecision
}

// IndexingSettings holds indexing pipeline configuration.
// Zero values defer to the defaults of the scanner and the lifecycle
// service, so an empty config file changes nothing.
type IndexingSettings struct {
	// Workers is the size of the per-folder indexing pool.
	Workers int

	// MaxFileSizeMB skips files larger than this during scans.
	MaxFileSizeMB int
}

// AgentRegistration locates one AI agent's MCP configuration file so the
// connection arbiter can rewrite it on primary changes.
type AgentRegistration struct {
	// ID is the client ID the agent claims the channel with.
	ID string

	// ConfigPath is the absolute path of the agent's config file.
	ConfigPath string

	// Format is the file schema, "json" or "yaml".
	Format string
}

// AppSettings holds all daemon configuration.
type AppSettings struct {
	// Daemon holds the listen address.
	Daemon DaemonSettings

	// Embedding holds embedding backend settings.
	Embedding EmbeddingSettings

	// VectorIndex holds vector index settings.
	VectorIndex VectorIndexSettings

	// Indexing holds indexing pipeline settings.
	Indexing IndexingSettings

	// Retry is the transient folder failure retry schedule.
	Retry RetryPolicy

	// Scheduler holds background task configuration.
	Scheduler SchedulerConfig

	// Agents lists the AI agents whose config files the arbiter rewrites.
	Agents []AgentRegistration
}

// DefaultAppSettings returns settings with sensible defaults. The ollama
// backend with nomic-embed-text works against a stock local Ollama; no
// key is required anywhere by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Daemon: DaemonSettings{
			Host: "127.0.0.1",
			Port: DefaultDaemonPort,
		},
		Embedding: EmbeddingSettings{
			Backend: EmbeddingOllama,
			Model:   "nomic-embed-text",
		},
		VectorIndex: VectorIndexSettings{
			Backend:   VectorIndexAuto,
			Precision: VectorPrecisionFloat16,
		},
		Retry:     DefaultRetryPolicy(),
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllEmbeddingBackends returns every supported embedding backend.
func AllEmbeddingBackends() []EmbeddingBackend {
	return []EmbeddingBackend{
		EmbeddingOllama,
		EmbeddingOpenAICompat,
		EmbeddingSynthetic,
	}
}

// AllVectorPrecisions returns all available vector precision options.
func AllVectorPrecisions() []VectorPrecision {
	return []VectorPrecision{
		VectorPrecisionFloat32,
		VectorPrecisionFloat16,
		VectorPrecisionInt8,
	}
}

// DefaultEmbeddingModels returns the default model per backend. The
// synthetic backend has no model to pick.
func DefaultEmbeddingModels() map[EmbeddingBackend]string {
	return map[EmbeddingBackend]string{
		EmbeddingOllama:       "nomic-embed-text",
		EmbeddingOpenAICompat: "text-embedding-3-small",
	}
}

// EmbeddingModelDimensions returns the vector dimensions for known models.
func EmbeddingModelDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
