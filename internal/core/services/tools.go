package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Retrieval tool names offered to the planner.
const (
	ToolListDocuments        = "list_documents"
	ToolSearchDocument       = "search_document"
	ToolSearchAllDocuments   = "search_all_documents"
	ToolSearchDocuments      = "search_documents"
	ToolSearchDocumentHybrid = "search_document_hybrid"
	ToolSearchAllHybrid      = "search_all_hybrid"
	ToolGetDocument          = "get_document"
)

// legacySuffix is accepted on every tool name for planners prompted with
// the HTTP tool names.
const legacySuffix = "_http"

const (
	snippetJoin = "\n...\n"
	chunkJoin   = "\n"
)

type toolKind int

const (
	kindListDocuments toolKind = iota
	kindSearchDocument
	kindSearchAll
	kindSearchDocumentHybrid
	kindSearchAllHybrid
	kindGetDocument
)

func toolTable() map[string]toolKind {
	base := map[string]toolKind{
		ToolListDocuments:        kindListDocuments,
		ToolSearchDocument:       kindSearchDocument,
		ToolSearchAllDocuments:   kindSearchAll,
		ToolSearchDocuments:      kindSearchAll,
		ToolSearchDocumentHybrid: kindSearchDocumentHybrid,
		ToolSearchAllHybrid:      kindSearchAllHybrid,
		ToolGetDocument:          kindGetDocument,
	}
	table := make(map[string]toolKind, 2*len(base))
	for name, kind := range base {
		table[name] = kind
		table[name+legacySuffix] = kind
	}
	return table
}

// ToolExecutor turns planner tool calls into evidence. Every recognised call
// emits a tool_call event before it runs and a tool_result event after.
// Calls are independent: a failing call yields no evidence and never stops
// the batch.
type ToolExecutor struct {
	docs    driving.DocumentService
	sink    driven.EventSink
	topK    int
	weights domain.FusionWeights
	tools   map[string]toolKind
}

// ToolOption configures a ToolExecutor.
type ToolOption func(*ToolExecutor)

// WithTopK sets the number of snippets each search returns.
func WithTopK(k int) ToolOption {
	return func(e *ToolExecutor) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithFusionWeights sets the weights used by hybrid tools.
func WithFusionWeights(w domain.FusionWeights) ToolOption {
	return func(e *ToolExecutor) {
		e.weights = w
	}
}

// NewToolExecutor creates an executor over the document service.
// A nil sink discards events.
func NewToolExecutor(docs driving.DocumentService, sink driven.EventSink, opts ...ToolOption) *ToolExecutor {
	if sink == nil {
		sink = DiscardSink{}
	}
	e := &ToolExecutor{
		docs:    docs,
		sink:    sink,
		topK:    domain.DefaultTopK,
		weights: domain.DefaultFusionWeights(),
		tools:   toolTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs calls in order and returns the evidence they produced.
func (e *ToolExecutor) Execute(ctx context.Context, calls []domain.ToolCall) []domain.Evidence {
	var evidence []domain.Evidence

	for _, call := range calls {
		kind, ok := e.tools[call.Name]
		if !ok {
			logger.Warn("Unknown tool %q, skipping", call.Name)
			continue
		}

		args := call.Arguments
		if args == nil {
			args = map[string]any{}
		}
		e.sink.Emit(domain.ToolCallEvent(call.Name, args))

		found, result := e.run(ctx, kind, args)
		evidence = append(evidence, found...)

		e.sink.Emit(domain.ToolResultEvent(call.Name, result))
		logger.Debug("Tool %s produced %d evidence", call.Name, len(found))
	}

	return evidence
}

func (e *ToolExecutor) run(ctx context.Context, kind toolKind, args map[string]any) ([]domain.Evidence, map[string]any) {
	k := e.topK
	if n := intArg(args, "top_k"); n > 0 {
		k = n
	}

	switch kind {
	case kindListDocuments:
		docs := e.docs.List(ctx)
		refs := make([]domain.DocumentRef, len(docs))
		for i, d := range docs {
			refs[i] = domain.DocumentRef{ID: d.ID, Name: d.Name}
		}
		return []domain.Evidence{{Documents: refs}}, map[string]any{"count": len(docs)}

	case kindSearchDocument:
		docID, query, missing := docAndQuery(args)
		if missing != "" {
			return nil, missingArg(missing)
		}
		res, err := e.docs.SearchDocument(ctx, docID, query, k)
		if err != nil {
			return nil, errorResult(err)
		}
		found := make([]domain.Evidence, res.Len())
		for i, s := range res.Snippets {
			found[i] = domain.Evidence{DocID: docID, Snippet: s, Scores: []float64{res.Scores[i]}}
		}
		return found, searchResult(found, "")

	case kindSearchDocumentHybrid:
		docID, query, missing := docAndQuery(args)
		if missing != "" {
			return nil, missingArg(missing)
		}
		res, err := e.docs.SearchHybrid(ctx, docID, query, k, e.weights)
		if err != nil {
			return nil, errorResult(err)
		}
		found := make([]domain.Evidence, len(res.Snippets))
		for i, s := range res.Snippets {
			found[i] = domain.Evidence{
				DocID:      docID,
				Snippet:    s,
				SearchType: res.SearchType,
				Scores:     []float64{res.Scores[i]},
			}
		}
		return found, searchResult(found, res.SearchType)

	case kindSearchAll:
		query := queryArg(args)
		if query == "" {
			return nil, missingArg("query")
		}
		res := e.docs.SearchAll(ctx, query, k)
		found := collectionEvidence(res, "")
		return found, searchResult(found, "")

	case kindSearchAllHybrid:
		query := queryArg(args)
		if query == "" {
			return nil, missingArg("query")
		}
		res := e.docs.SearchAllHybrid(ctx, query, k, e.weights)
		found := collectionEvidence(res, res.SearchType)
		return found, searchResult(found, res.SearchType)

	case kindGetDocument:
		docID := stringArg(args, "doc_id")
		if docID == "" {
			return nil, missingArg("doc_id")
		}
		doc, err := e.docs.Get(ctx, docID)
		if err != nil {
			return nil, errorResult(err)
		}
		ev := domain.Evidence{DocID: doc.ID, Snippet: strings.Join(doc.Chunks, chunkJoin)}
		return []domain.Evidence{ev}, map[string]any{"doc_id": doc.ID}
	}

	return nil, errorResult(fmt.Errorf("unhandled tool kind %d", kind))
}

// collectionEvidence produces one evidence record per document.
func collectionEvidence(res *domain.CollectionResult, st domain.SearchType) []domain.Evidence {
	found := make([]domain.Evidence, 0, len(res.Results))
	for _, hits := range res.Results {
		found = append(found, domain.Evidence{
			DocID:      hits.DocID,
			Snippet:    strings.Join(hits.Snippets, snippetJoin),
			SearchType: st,
			Scores:     hits.Scores,
		})
	}
	return found
}

func searchResult(found []domain.Evidence, st domain.SearchType) map[string]any {
	out := map[string]any{
		"count":    len(found),
		"evidence": found,
	}
	if st != "" {
		out["search_type"] = st
	}
	return out
}

func missingArg(name string) map[string]any {
	return map[string]any{"error": "missing argument: " + name}
}

func errorResult(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func docAndQuery(args map[string]any) (docID, query, missing string) {
	docID = stringArg(args, "doc_id")
	if docID == "" {
		return "", "", "doc_id"
	}
	query = queryArg(args)
	if query == "" {
		return "", "", "query"
	}
	return docID, query, ""
}

func queryArg(args map[string]any) string {
	if q := stringArg(args, "query"); q != "" {
		return q
	}
	return stringArg(args, "question")
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// ToolSpecs describes the retrieval tools as function schemas.
func ToolSpecs() []driven.ToolSpec {
	docID := map[string]any{"type": "string", "description": "ID of the document to search."}
	query := map[string]any{"type": "string", "description": "Search query."}
	topK := map[string]any{"type": "integer", "description": "Number of snippets to return."}

	object := func(props map[string]any, required ...string) map[string]any {
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		return schema
	}

	return []driven.ToolSpec{
		{
			Name:        ToolListDocuments,
			Description: "List every available document with its id and name.",
			Parameters:  object(map[string]any{}),
		},
		{
			Name:        ToolSearchDocument,
			Description: "Keyword (BM25) search inside one document.",
			Parameters:  object(map[string]any{"doc_id": docID, "query": query, "top_k": topK}, "doc_id", "query"),
		},
		{
			Name:        ToolSearchAllDocuments,
			Description: "Keyword (BM25) search across all documents.",
			Parameters:  object(map[string]any{"query": query, "top_k": topK}, "query"),
		},
		{
			Name:        ToolSearchDocumentHybrid,
			Description: "Hybrid keyword and semantic search inside one document.",
			Parameters:  object(map[string]any{"doc_id": docID, "query": query, "top_k": topK}, "doc_id", "query"),
		},
		{
			Name:        ToolSearchAllHybrid,
			Description: "Hybrid keyword and semantic search across all documents.",
			Parameters:  object(map[string]any{"query": query, "top_k": topK}, "query"),
		},
		{
			Name:        ToolGetDocument,
			Description: "Fetch the full text of one document.",
			Parameters:  object(map[string]any{"doc_id": docID}, "doc_id"),
		},
	}
}
