package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderLocal is the in-process hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderLocal:
		return "Hashing embedder (offline)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects where semantic vectors live.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendMemory VectorBackend = "memory"
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendQdrant
}

// SemanticSettings controls the optional semantic index.
type SemanticSettings struct {
	// Enabled turns semantic and hybrid ranking on.
	Enabled bool

	// Backend is the vector index implementation.
	Backend VectorBackend

	// QdrantURL is the Qdrant REST endpoint.
	QdrantURL string

	// QdrantCollection is the collection that holds chunk vectors.
	QdrantCollection string

	// QdrantAPIKey is sent as the api-key header when set.
	QdrantAPIKey string
}

// RetrievalSettings holds search defaults.
type RetrievalSettings struct {
	TopK           int
	BM25Weight     float64
	SemanticWeight float64
	ChunkSize      int
}

// Weights returns the fusion weights.
func (r RetrievalSettings) Weights() FusionWeights {
	return FusionWeights{BM25: r.BM25Weight, Semantic: r.SemanticWeight}
}

// OrchestratorSettings bounds the answer loop.
type OrchestratorSettings struct {
	// MaxAttempts is the number of planner rounds allowed per question.
	MaxAttempts int

	// SynthEvidenceLimit caps the evidence handed to the synthesizer.
	SynthEvidenceLimit int
}

// StorageBackend selects where documents are persisted.
type StorageBackend string

// Available storage backends.
const (
	StorageBackendJSON   StorageBackend = "json"
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendJSON, StorageBackendSQLite, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the document store implementation.
	Backend StorageBackend

	// DataDir holds documents/ and the sqlite database.
	DataDir string

	// KnowledgeDir is scanned for *.txt and *.md files at startup.
	KnowledgeDir string

	// Autoload enables the knowledge directory scan.
	Autoload bool

	// Watch re-syncs knowledge files when they change on disk.
	Watch bool
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	Port int
}

// Settings holds all application settings.
type Settings struct {
	LLM          LLMSettings
	Embedding    EmbeddingSettings
	Semantic     SemanticSettings
	Retrieval    RetrievalSettings
	Orchestrator OrchestratorSettings
	Storage      StorageSettings
	Server       ServerSettings
}

// Default setting values.
const (
	DefaultChunkSize          = 800
	DefaultMaxAttempts        = 5
	DefaultSynthEvidenceLimit = 5
	DefaultPort               = 8000
	DefaultQdrantCollection   = "sercha_chunks"
)

// DefaultSettings returns settings with sensible defaults.
// The LLM is left unconfigured; asking questions needs one.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{},
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
		},
		Semantic: SemanticSettings{
			Enabled:          false,
			Backend:          VectorBackendMemory,
			QdrantURL:        "http://localhost:6333",
			QdrantCollection: DefaultQdrantCollection,
		},
		Retrieval: RetrievalSettings{
			TopK:           DefaultTopK,
			BM25Weight:     DefaultBM25Weight,
			SemanticWeight: DefaultSemanticWeight,
			ChunkSize:      DefaultChunkSize,
		},
		Orchestrator: OrchestratorSettings{
			MaxAttempts:        DefaultMaxAttempts,
			SynthEvidenceLimit: DefaultSynthEvidenceLimit,
		},
		Storage: StorageSettings{
			Backend:      StorageBackendJSON,
			DataDir:      "",
			KnowledgeDir: "knowledge",
			Autoload:     true,
		},
		Server: ServerSettings{
			Port: DefaultPort,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-256",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local
		"hashing-256": 256,
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
