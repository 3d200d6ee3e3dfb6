// Package httpapi serves the document collection and the answer loop over
// HTTP. Answers stream as newline-delimited JSON events.
package httpapi

import (
	"context"
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("httpapi: document service is required")

// Summariser writes short descriptions for uploaded files.
// driven.LLMService satisfies it.
type Summariser interface {
	Summarise(ctx context.Context, content string, maxLength int) (string, error)
}

// Ports aggregates the driving ports the HTTP API exposes.
type Ports struct {
	// Documents owns the collection and its searches.
	Documents driving.DocumentService

	// Ask answers questions. Optional; /api/ask reports 501 without it.
	Ask driving.AskService

	// Runs reads the audit log. Optional; /api/runs reports 501 without it.
	Runs driving.RunService

	// Summariser describes uploaded files. Optional.
	Summariser Summariser
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
