package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// AskOptions tunes a single question.
type AskOptions struct {
	// MaxAttempts overrides the configured attempt budget when positive.
	MaxAttempts int

	// Sink receives progress events. Nil discards them.
	Sink driven.EventSink
}

// AskService answers questions by iterating planner, judge and synthesizer
// rounds over the document collection.
type AskService interface {
	// Ask runs the answer loop for a question.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.OrchestrationResult, error)
}

// RunService exposes the audit log of answered questions.
type RunService interface {
	// Recent returns the latest runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get retrieves a single run.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}
