package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AddDocumentRequest carries the fields of a new or replaced document.
type AddDocumentRequest struct {
	ID          string
	Name        string
	Description string
	Content     string

	// Semantic indexes the chunks for semantic search when the capability
	// is enabled. Nil means use the collection default.
	Semantic *bool
}

// DocumentService owns the document collection and its search operations.
type DocumentService interface {
	// Add chunks, indexes and persists a document, replacing any document
	// with the same ID.
	Add(ctx context.Context, req AddDocumentRequest) (*domain.DocumentSummary, error)

	// Remove deletes a document and its indexes.
	Remove(ctx context.Context, docID string) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, docID string) (*domain.Document, error)

	// List returns summaries of every document ordered by ID.
	List(ctx context.Context) []domain.DocumentSummary

	// SearchDocument ranks one document's chunks lexically.
	SearchDocument(ctx context.Context, docID, query string, k int) (*domain.LexicalResult, error)

	// SearchAll ranks every document's chunks lexically.
	SearchAll(ctx context.Context, query string, k int) *domain.CollectionResult

	// SearchHybrid fuses lexical and semantic ranking for one document.
	SearchHybrid(ctx context.Context, docID, query string, k int, weights domain.FusionWeights) (*domain.HybridResult, error)

	// SearchAllHybrid fuses lexical and semantic ranking for every document.
	SearchAllHybrid(ctx context.Context, query string, k int, weights domain.FusionWeights) *domain.CollectionResult

	// SearchSemantic ranks one document's passages by meaning alone.
	// Returns domain.ErrSemanticUnavailable when semantic search is disabled.
	SearchSemantic(ctx context.Context, docID, query string, k int) ([]domain.SemanticPassage, error)

	// SemanticEnabled reports whether a semantic index is attached.
	SemanticEnabled() bool
}
