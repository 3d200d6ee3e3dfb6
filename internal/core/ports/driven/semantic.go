package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SemanticIndex ranks passages by meaning rather than shared terms.
// Passages need not match chunk text exactly; hybrid search attaches them to
// lexical chunks by word overlap.
type SemanticIndex interface {
	// Index embeds and stores the chunks of a document, replacing any
	// previous vectors for it.
	Index(ctx context.Context, docID string, chunks []string) error

	// Remove deletes a document's vectors.
	Remove(ctx context.Context, docID string) error

	// Search returns up to k passages from the document ordered by
	// descending similarity.
	Search(ctx context.Context, docID, query string, k int) ([]domain.SemanticPassage, error)
}
