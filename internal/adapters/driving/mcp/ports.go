package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Documents owns the collection and its searches.
	Documents driving.DocumentService

	// Ask answers questions. The ask tool is only registered when set.
	Ask driving.AskService

	// Weights tune the search tool. Zero means the default split.
	Weights domain.FusionWeights
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
