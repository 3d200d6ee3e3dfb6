package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	result *domain.OrchestrationResult
	err    error
	opts   driving.AskOptions
}

func (m *mockAskService) Ask(_ context.Context, _ string, opts driving.AskOptions) (*domain.OrchestrationResult, error) {
	m.opts = opts
	return m.result, m.err
}

// newCollection returns a collection holding two small documents.
func newCollection(t *testing.T) *services.DocumentCollection {
	t.Helper()
	c := services.NewDocumentCollection(chunker.New(), nil, nil)
	for _, req := range []driving.AddDocumentRequest{
		{ID: "pets", Name: "Pets", Description: "animals", Content: "The cat sat on the mat.\n\nThe dog ran in the park."},
		{ID: "cars", Name: "Cars", Description: "vehicles", Content: "Engines need oil.\n\nA cat once slept in the garage."},
	} {
		_, err := c.Add(context.Background(), req)
		require.NoError(t, err)
	}
	return c
}
