package driven

import "context"

// VectorIndex stores chunk embeddings and answers nearest neighbour queries.
type VectorIndex interface {
	// Upsert inserts or replaces the given records.
	Upsert(ctx context.Context, records []VectorRecord) error

	// DeleteDocument removes every vector belonging to a document.
	DeleteDocument(ctx context.Context, docID string) error

	// Search finds the k nearest neighbours to the query vector.
	// A non-empty docID restricts the search to that document.
	Search(ctx context.Context, query []float32, docID string, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorRecord is one chunk embedding.
type VectorRecord struct {
	DocID     string
	Index     int
	Text      string
	Embedding []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	DocID string
	Index int
	Text  string

	// Similarity is the cosine similarity score.
	Similarity float64
}
