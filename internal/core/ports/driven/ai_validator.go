package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// AIConfigValidator probes provider settings before the settings service
// persists them. Settings that name no provider are valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
