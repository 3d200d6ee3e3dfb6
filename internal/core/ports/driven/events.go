package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// EventSink receives progress events while a question is answered.
// Emit must not block and must never fail the caller.
type EventSink interface {
	Emit(event domain.Event)
}
