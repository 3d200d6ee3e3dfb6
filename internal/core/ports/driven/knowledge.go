package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// KnowledgeSource discovers files to ingest, such as a local knowledge directory.
type KnowledgeSource interface {
	// Scan returns every ingestible file currently present as a created change.
	Scan(ctx context.Context) ([]domain.FileChange, error)

	// Watch streams changes until ctx is cancelled or Close is called.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close stops watching and releases resources.
	Close() error
}
