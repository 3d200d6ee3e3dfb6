package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// NormaliserRegistry routes a file to the highest priority normaliser for
// its MIME type. Uploads, the CLI and the knowledge loader all share one.
type NormaliserRegistry interface {
	// Normalise fails with domain.ErrUnsupportedType when nothing matches.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)
	Register(normaliser Normaliser)

	// SupportedMIMETypes also drives which files the knowledge loader picks up.
	SupportedMIMETypes() []string
}
