package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RunStore is the audit log of answered questions.
type RunStore interface {
	// SaveRun appends a record.
	SaveRun(ctx context.Context, run domain.RunRecord) error

	// GetRun retrieves a record by ID.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns the most recent records first, at most limit.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
