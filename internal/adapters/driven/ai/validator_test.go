package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func ollamaStub(t *testing.T, healthy bool) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy && r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestNewConfigValidator_Timeout(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator().timeout)
	assert.Equal(t, time.Second, NewConfigValidator(WithPingTimeout(time.Second)).timeout)
	assert.Equal(t, pingTimeout, NewConfigValidator(WithPingTimeout(0)).timeout)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator(WithPingTimeout(2 * time.Second))

	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  error
	}{
		{name: "nil settings", settings: nil},
		{name: "no provider", settings: &domain.LLMSettings{Model: "llama3.2"}},
		{
			name:     "reachable",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2", BaseURL: ollamaStub(t, true)},
		},
		{
			name:     "unreachable",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2", BaseURL: ollamaStub(t, false)},
			wantErr:  domain.ErrLLMUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateLLM(tt.settings)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "llama3.2")
		})
	}
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal}))

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic does not support embeddings")
}

func TestCreateAndValidate(t *testing.T) {
	_, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ollamaStub(t, false)})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "hashing-256", svc.ModelName())
}
