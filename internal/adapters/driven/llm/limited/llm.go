// Package limited throttles calls to an LLM service with a token bucket.
package limited

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultBurst is used when a non-positive burst is given.
const DefaultBurst = 2

// LLMService waits for a token before every model call. Ping, ModelName and
// Close are not throttled.
type LLMService struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// Wrap returns inner throttled to requestsPerSecond. A non-positive rate
// returns inner unchanged.
func Wrap(inner driven.LLMService, requestsPerSecond float64, burst int) driven.LLMService {
	if inner == nil || requestsPerSecond <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (s *LLMService) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm rate limit: %w", err)
	}
	return nil
}

// Generate waits for a token, then delegates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.inner.Generate(ctx, prompt, opts)
}

// Chat waits for a token, then delegates.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.inner.Chat(ctx, messages, opts)
}

// ChatWithTools waits for a token, then delegates.
func (s *LLMService) ChatWithTools(
	ctx context.Context,
	messages []driven.ChatMessage,
	tools []driven.ToolSpec,
	opts driven.ChatOptions,
) (*driven.ChatResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.ChatWithTools(ctx, messages, tools, opts)
}

// Summarise waits for a token, then delegates.
func (s *LLMService) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.inner.Summarise(ctx, content, maxLength)
}

// ModelName returns the wrapped model name.
func (s *LLMService) ModelName() string { return s.inner.ModelName() }

// Ping delegates without throttling.
func (s *LLMService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the wrapped service.
func (s *LLMService) Close() error { return s.inner.Close() }

// SetPromptStore forwards to the wrapped service when it accepts prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	if aware, ok := s.inner.(driven.PromptStoreAware); ok {
		aware.SetPromptStore(store)
	}
}
