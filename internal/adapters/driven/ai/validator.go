package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved by
// building the service they describe and pinging it once.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout bounds each provider ping. Non-positive values are ignored.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator using pingTimeout unless overridden.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding reports whether the embedding provider answers.
// Unconfigured settings validate trivially.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return v.ping(svc.Ping, svc.ModelName(), domain.ErrEmbeddingUnavailable)
}

// ValidateLLM reports whether the chat model provider answers.
// Unconfigured settings validate trivially.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return v.ping(svc.Ping, svc.ModelName(), domain.ErrLLMUnavailable)
}

func (v *ConfigValidator) ping(ping func(context.Context) error, model string, unavailable error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", unavailable, model, err)
	}
	return nil
}
