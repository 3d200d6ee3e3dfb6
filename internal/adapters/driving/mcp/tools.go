package mcp

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find passages"`
	DocID string `json:"doc_id,omitempty" jsonschema:"restrict the search to one document"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results"`
	Count      int                  `json:"count"`
	SearchType domain.SearchType    `json:"search_type"`
}

// SearchResultOutput represents a single ranked passage.
type SearchResultOutput struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Index        int     `json:"index"`
	Score        float64 `json:"score"`
	Snippet      string  `json:"snippet"`
}

// ListDocumentsInput is the (empty) input schema for list_documents.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for list_documents.
type ListDocumentsOutput struct {
	Documents []domain.DocumentSummary `json:"documents"`
	Count     int                      `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string `json:"question" jsonschema:"the question to answer from the documents"`
	MaxAttempts int    `json:"max_attempts,omitempty" jsonschema:"planner and judge rounds to allow"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Verdict   domain.Verdict    `json:"verdict"`
	Attempts  int               `json:"attempts"`
	Citations []domain.Citation `json:"citations"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Hybrid keyword and semantic search across the document collection",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List every document with its description",
	}, s.handleListDocuments)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the documents, with citations",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	var hits []domain.DocumentHits
	var searchType domain.SearchType
	if input.DocID != "" {
		doc, err := s.ports.Documents.Get(ctx, input.DocID)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		res, err := s.ports.Documents.SearchHybrid(ctx, input.DocID, input.Query, limit, s.weights)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		hits = []domain.DocumentHits{{DocID: doc.ID, DocName: doc.Name, Snippets: res.Snippets, Indices: res.Indices, Scores: res.Scores}}
		searchType = res.SearchType
	} else {
		res := s.ports.Documents.SearchAllHybrid(ctx, input.Query, limit, s.weights)
		hits = res.Results
		searchType = res.SearchType
	}

	output := SearchOutput{
		Results:    flatten(hits, limit),
		SearchType: searchType,
	}
	output.Count = len(output.Results)
	return nil, output, nil
}

// flatten merges per-document hits into one list ranked by score.
func flatten(hits []domain.DocumentHits, limit int) []SearchResultOutput {
	out := []SearchResultOutput{}
	for _, h := range hits {
		for i := range h.Snippets {
			out = append(out, SearchResultOutput{
				DocumentID:   h.DocID,
				DocumentName: h.DocName,
				Index:        h.Indices[i],
				Score:        h.Scores[i],
				Snippet:      h.Snippets[i],
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs := s.ports.Documents.List(ctx)
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// handleAsk runs the answer loop to completion. Progress events are not
// forwarded; the tool returns the final answer only.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Ask.Ask(ctx, input.Question, driving.AskOptions{MaxAttempts: input.MaxAttempts})
	if err != nil {
		return nil, AskOutput{}, err
	}

	citations, _ := services.Citations(result)
	return nil, AskOutput{
		Answer:    result.FinalAnswer,
		Verdict:   result.Verdict,
		Attempts:  result.Attempts,
		Citations: citations,
	}, nil
}
