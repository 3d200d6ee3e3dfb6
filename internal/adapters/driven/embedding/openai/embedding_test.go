package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	tests := []struct {
		model string
		dims  int
		want  int
	}{
		{"", 0, 1536},
		{"text-embedding-3-large", 0, 3072},
		{"text-embedding-3-large", 256, 256},
		{"text-embedding-ada-002", 256, 1536},
		{"custom", 0, 1536},
	}
	for _, tt := range tests {
		svc, err := NewEmbeddingService(Config{APIKey: "k", Model: tt.model, Dimensions: tt.dims})
		require.NoError(t, err)
		assert.Equal(t, tt.want, svc.Dimensions(), "model %q dims %d", tt.model, tt.dims)
	}
}

func TestEmbeddingService_EmbedBatch_OrdersByIndex(t *testing.T) {
	var got embeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0.5,0.5]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL, Dimensions: 2})
	require.NoError(t, err)

	vs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0.5, 0.5}}, vs)
	assert.Equal(t, 2, got.Dimensions)
	assert.Equal(t, []string{"a", "b"}, got.Input)
}

func TestEmbeddingService_EmbedBatch_SplitsRequests(t *testing.T) {
	var sizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "float", req.EncodingFormat)
		sizes = append(sizes, len(req.Input))

		resp := map[string]any{}
		data := make([]map[string]any, 0, len(req.Input))
		for i, in := range req.Input {
			data = append(data, map[string]any{"index": i, "embedding": []float64{float64(len(in))}})
		}
		resp["data"] = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL, BatchSize: 2})
	require.NoError(t, err)

	vs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, [][]float32{{1}, {2}, {3}, {4}, {5}}, vs)

	empty, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Len(t, sizes, 3, "no request for empty input")
}

func TestEmbeddingService_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`},
		{"missing embedding", http.StatusOK, `{"data":[{"index":0,"embedding":[1]}]}`},
		{"bad index", http.StatusOK, `{"data":[{"index":5,"embedding":[1]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()
			svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})

			assert.Error(t, err)
		})
	}
}

func TestEmbeddingService_Unreachable(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
