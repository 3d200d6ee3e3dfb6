package driven

import "context"

// EmbeddingService turns chunk text and queries into vectors for the
// semantic index. A nil service means hybrid search runs as BM25 only.
//
// The vectors it produces are stored by a VectorIndex, which must be
// created with the same Dimensions.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping makes the cheapest request that proves credentials and model work.
	Ping(ctx context.Context) error
	Close() error
}
