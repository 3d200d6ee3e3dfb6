package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure VectorSemanticIndex implements the interface.
var _ driven.SemanticIndex = (*VectorSemanticIndex)(nil)

const embedBatchSize = 32

// VectorSemanticIndex embeds chunks and stores them in a vector index.
type VectorSemanticIndex struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
}

// NewVectorSemanticIndex creates a semantic index over an embedder and a vector store.
func NewVectorSemanticIndex(embedder driven.EmbeddingService, vectors driven.VectorIndex) *VectorSemanticIndex {
	return &VectorSemanticIndex{embedder: embedder, vectors: vectors}
}

// Index replaces the vectors of docID with embeddings of chunks.
func (s *VectorSemanticIndex) Index(ctx context.Context, docID string, chunks []string) error {
	if err := s.vectors.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("clear vectors for %s: %w", docID, err)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		embeddings, err := s.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed %s: %w: %w", docID, domain.ErrEmbeddingUnavailable, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed %s: got %d embeddings for %d chunks", docID, len(embeddings), len(batch))
		}

		records := make([]driven.VectorRecord, len(batch))
		for i, text := range batch {
			records[i] = driven.VectorRecord{
				DocID:     docID,
				Index:     start + i,
				Text:      text,
				Embedding: embeddings[i],
			}
		}
		if err := s.vectors.Upsert(ctx, records); err != nil {
			return fmt.Errorf("store vectors for %s: %w", docID, err)
		}
	}

	logger.Debug("Indexed %d chunks of %s with %s", len(chunks), docID, s.embedder.ModelName())
	return nil
}

// Remove deletes the vectors of docID.
func (s *VectorSemanticIndex) Remove(ctx context.Context, docID string) error {
	return s.vectors.DeleteDocument(ctx, docID)
}

// Search embeds the query and returns the closest passages of docID.
// An empty docID searches every document.
func (s *VectorSemanticIndex) Search(ctx context.Context, docID, query string, k int) ([]domain.SemanticPassage, error) {
	if k <= 0 {
		return []domain.SemanticPassage{}, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	hits, err := s.vectors.Search(ctx, vec, docID, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	passages := make([]domain.SemanticPassage, len(hits))
	for i, h := range hits {
		passages[i] = domain.SemanticPassage{DocID: h.DocID, Index: h.Index, Text: h.Text, Score: h.Similarity}
	}
	return passages, nil
}
