package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRPS            = "llm.requests_per_second"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keySemanticEnabled   = "semantic.enabled"
	keySemanticBackend   = "semantic.backend"
	keyQdrantURL         = "semantic.qdrant_url"
	keyQdrantCollection  = "semantic.qdrant_collection"
	keyQdrantAPIKey      = "semantic.qdrant_api_key"
	keyTopK              = "retrieval.top_k"
	keyBM25Weight        = "retrieval.bm25_weight"
	keySemanticWeight    = "retrieval.semantic_weight"
	keyChunkSize         = "retrieval.chunk_size"
	keyMaxAttempts       = "orchestrator.max_attempts"
	keySynthEvidence     = "orchestrator.synth_evidence_limit"
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keyStorageKnowledge  = "storage.knowledge_dir"
	keyStorageAutoload   = "storage.autoload"
	keyStorageWatch      = "storage.watch"
	keyServerPort        = "server.port"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	EnvLLMProvider       = "LLM_PROVIDER"
	EnvLLMModel          = "LLM_MODEL"
	EnvEmbeddingProvider = "EMBEDDING_PROVIDER"
	EnvSemanticEnabled   = "SEMANTIC_SEARCH_ENABLED"
	EnvQdrantURL         = "QDRANT_URL"
	EnvAutoload          = "DOC_API_AUTOLOAD"
	EnvServerPort        = "API_SERVER_PORT"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings: stored values over defaults,
// then environment overrides.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.getFloat(keyLLMRPS, d.LLM.RequestsPerSecond),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Semantic: domain.SemanticSettings{
			Enabled:          s.getBool(keySemanticEnabled, d.Semantic.Enabled),
			Backend:          s.getVectorBackend(d.Semantic.Backend),
			QdrantURL:        s.getString(keyQdrantURL, d.Semantic.QdrantURL),
			QdrantCollection: s.getString(keyQdrantCollection, d.Semantic.QdrantCollection),
			QdrantAPIKey:     s.configStore.GetString(keyQdrantAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:           s.getInt(keyTopK, d.Retrieval.TopK),
			BM25Weight:     s.getFloat(keyBM25Weight, d.Retrieval.BM25Weight),
			SemanticWeight: s.getFloat(keySemanticWeight, d.Retrieval.SemanticWeight),
			ChunkSize:      s.getInt(keyChunkSize, d.Retrieval.ChunkSize),
		},
		Orchestrator: domain.OrchestratorSettings{
			MaxAttempts:        s.getInt(keyMaxAttempts, d.Orchestrator.MaxAttempts),
			SynthEvidenceLimit: s.getInt(keySynthEvidence, d.Orchestrator.SynthEvidenceLimit),
		},
		Storage: domain.StorageSettings{
			Backend:      s.getStorageBackend(d.Storage.Backend),
			DataDir:      s.getString(keyStorageDataDir, d.Storage.DataDir),
			KnowledgeDir: s.getString(keyStorageKnowledge, d.Storage.KnowledgeDir),
			Autoload:     s.getBool(keyStorageAutoload, d.Storage.Autoload),
			Watch:        s.getBool(keyStorageWatch, d.Storage.Watch),
		},
		Server: domain.ServerSettings{
			Port: s.getInt(keyServerPort, d.Server.Port),
		},
	}

	if err := s.applyEnv(settings); err != nil {
		return nil, err
	}
	fillModelDefaults(settings)
	return settings, nil
}

// applyEnv overlays environment variables on the stored settings.
func (s *SettingsService) applyEnv(settings *domain.Settings) error {
	if v, ok := s.env(EnvLLMProvider); ok {
		p := domain.AIProvider(strings.ToLower(v))
		if !p.IsValid() || p == domain.AIProviderLocal {
			return fmt.Errorf("%s: invalid LLM provider %q: %w", EnvLLMProvider, v, domain.ErrInvalidInput)
		}
		if p != settings.LLM.Provider {
			settings.LLM.Model = ""
		}
		settings.LLM.Provider = p
	}
	if v, ok := s.env(EnvLLMModel); ok {
		settings.LLM.Model = v
	}
	if v, ok := s.env(EnvEmbeddingProvider); ok {
		p := domain.AIProvider(strings.ToLower(v))
		if !p.IsValid() || p == domain.AIProviderAnthropic {
			return fmt.Errorf("%s: invalid embedding provider %q: %w", EnvEmbeddingProvider, v, domain.ErrInvalidInput)
		}
		if p != settings.Embedding.Provider {
			settings.Embedding.Model = ""
		}
		settings.Embedding.Provider = p
	}

	if v, ok := s.env(EnvOpenAIAPIKey); ok {
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = v
		}
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = v
		}
	}
	if v, ok := s.env(EnvAnthropicAPIKey); ok {
		if settings.LLM.Provider == domain.AIProviderAnthropic && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = v
		}
	}

	if v, ok := s.env(EnvSemanticEnabled); ok {
		settings.Semantic.Enabled = parseTruthy(v)
	}
	if v, ok := s.env(EnvQdrantURL); ok {
		settings.Semantic.QdrantURL = v
		settings.Semantic.Backend = domain.VectorBackendQdrant
	}
	if v, ok := s.env(EnvAutoload); ok {
		settings.Storage.Autoload = parseTruthy(v)
	}
	if v, ok := s.env(EnvServerPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q: %w", EnvServerPort, v, domain.ErrInvalidInput)
		}
		settings.Server.Port = port
	}
	return nil
}

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// parseTruthy accepts 1, true, yes and on in any case.
func parseTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func fillModelDefaults(settings *domain.Settings) {
	if settings.LLM.Provider != "" && settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaBaseURL
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaBaseURL
	}
}

// Save persists application settings. Empty API keys are not written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRPS, settings.LLM.RequestsPerSecond},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keySemanticEnabled, settings.Semantic.Enabled},
		{keySemanticBackend, string(settings.Semantic.Backend)},
		{keyQdrantURL, settings.Semantic.QdrantURL},
		{keyQdrantCollection, settings.Semantic.QdrantCollection},
		{keyTopK, settings.Retrieval.TopK},
		{keyBM25Weight, settings.Retrieval.BM25Weight},
		{keySemanticWeight, settings.Retrieval.SemanticWeight},
		{keyChunkSize, settings.Retrieval.ChunkSize},
		{keyMaxAttempts, settings.Orchestrator.MaxAttempts},
		{keySynthEvidence, settings.Orchestrator.SynthEvidenceLimit},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStorageKnowledge, settings.Storage.KnowledgeDir},
		{keyStorageAutoload, settings.Storage.Autoload},
		{keyStorageWatch, settings.Storage.Watch},
		{keyServerPort, settings.Server.Port},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyQdrantAPIKey: settings.Semantic.QdrantAPIKey,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || provider == domain.AIProviderLocal {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetSemantic turns semantic search on or off.
func (s *SettingsService) SetSemantic(enabled bool, backend domain.VectorBackend) error {
	if backend == "" {
		backend = domain.VectorBackendMemory
	}
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Semantic.Enabled = enabled
	settings.Semantic.Backend = backend
	return s.Save(settings)
}

// Validate checks that the settings can serve the enabled features.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if settings.Semantic.Enabled && !settings.Embedding.IsConfigured() {
		errs = append(errs, errors.New("semantic search requires an embedding provider to be configured"))
	}
	if settings.Semantic.Enabled && settings.Semantic.Backend == domain.VectorBackendQdrant && settings.Semantic.QdrantURL == "" {
		errs = append(errs, errors.New("qdrant backend requires semantic.qdrant_url"))
	}
	if w := settings.Retrieval; w.BM25Weight < 0 || w.SemanticWeight < 0 {
		errs = append(errs, errors.New("fusion weights must not be negative"))
	}
	if settings.Retrieval.TopK <= 0 {
		errs = append(errs, errors.New("retrieval.top_k must be positive"))
	}
	if settings.Orchestrator.MaxAttempts <= 0 {
		errs = append(errs, errors.New("orchestrator.max_attempts must be positive"))
	}
	if !settings.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keySemanticBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStorageBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
