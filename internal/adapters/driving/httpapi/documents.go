package httpapi

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// addDocumentRequest mirrors the add payload. Pointers tell a missing
// field apart from an empty one.
type addDocumentRequest struct {
	DocID                *string `json:"doc_id"`
	Name                 *string `json:"name"`
	Content              *string `json:"content"`
	Description          *string `json:"description"`
	EnableSemanticSearch *bool   `json:"enable_semantic_search"`
}

// missing returns the first required field that was not sent.
func (r addDocumentRequest) missing() string {
	switch {
	case r.DocID == nil:
		return "doc_id"
	case r.Name == nil:
		return "name"
	case r.Content == nil:
		return "content"
	case r.Description == nil:
		return "description"
	}
	return ""
}

// searchRequest covers every search endpoint.
type searchRequest struct {
	DocID          string   `json:"doc_id"`
	Question       string   `json:"question"`
	K              *int     `json:"k"`
	BM25Weight     *float64 `json:"bm25_weight"`
	SemanticWeight *float64 `json:"semantic_weight"`
}

func (r searchRequest) k() int {
	if r.K == nil {
		return domain.DefaultTopK
	}
	return *r.K
}

func (r searchRequest) weights() domain.FusionWeights {
	w := domain.DefaultFusionWeights()
	if r.BM25Weight != nil {
		w.BM25 = *r.BM25Weight
	}
	if r.SemanticWeight != nil {
		w.Semantic = *r.SemanticWeight
	}
	return w
}

type documentHitsResponse struct {
	DocID    string    `json:"doc_id"`
	DocName  string    `json:"doc_name"`
	Snippets []string  `json:"snippets"`
	Indices  []int     `json:"indices"`
	Scores   []float64 `json:"scores"`
}

type hybridHitsResponse struct {
	documentHitsResponse
	BM25Scores     []float64 `json:"bm25_scores"`
	SemanticScores []float64 `json:"semantic_scores"`
}

type collectionResponse struct {
	Results         any               `json:"results"`
	TotalDocs       int               `json:"total_docs_searched"`
	DocsWithResults int               `json:"docs_with_results"`
	SearchType      domain.SearchType `json:"search_type,omitempty"`
}

func toHits(hits domain.DocumentHits) documentHitsResponse {
	return documentHitsResponse{
		DocID:    hits.DocID,
		DocName:  hits.DocName,
		Snippets: orEmpty(hits.Snippets),
		Indices:  orEmpty(hits.Indices),
		Scores:   orEmpty(hits.Scores),
	}
}

func lexicalCollection(res *domain.CollectionResult) collectionResponse {
	results := make([]documentHitsResponse, len(res.Results))
	for i, hits := range res.Results {
		results[i] = toHits(hits)
	}
	return collectionResponse{Results: results, TotalDocs: res.TotalDocs, DocsWithResults: res.DocsWithResults}
}

func hybridCollection(res *domain.CollectionResult) collectionResponse {
	results := make([]hybridHitsResponse, len(res.Results))
	for i, hits := range res.Results {
		results[i] = hybridHitsResponse{
			documentHitsResponse: toHits(hits),
			BM25Scores:           orEmpty(hits.BM25Scores),
			SemanticScores:       orEmpty(hits.SemanticScores),
		}
	}
	return collectionResponse{
		Results:         results,
		TotalDocs:       res.TotalDocs,
		DocsWithResults: res.DocsWithResults,
		SearchType:      res.SearchType,
	}
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if field := req.missing(); field != "" {
		writeError(w, http.StatusBadRequest, "Missing field: "+field)
		return
	}

	summary, err := s.ports.Documents.Add(r.Context(), driving.AddDocumentRequest{
		ID:          *req.DocID,
		Name:        *req.Name,
		Description: *req.Description,
		Content:     *req.Content,
		Semantic:    req.EnableSemanticSearch,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"document": summary,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := orEmpty(s.ports.Documents.List(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

// docName looks up a document for a search response. It writes the 404
// and returns false when the document is unknown.
func (s *Server) docName(w http.ResponseWriter, r *http.Request, docID string) (string, bool) {
	doc, err := s.ports.Documents.Get(r.Context(), docID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, docNotFound(docID))
		return "", false
	}
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return doc.Name, true
}

func (s *Server) handleSearchDocument(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, ok := s.docName(w, r, req.DocID)
	if !ok {
		return
	}

	res, err := s.ports.Documents.SearchDocument(r.Context(), req.DocID, req.Question, req.k())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentHitsResponse{
		DocID:    req.DocID,
		DocName:  name,
		Snippets: orEmpty(res.Snippets),
		Indices:  orEmpty(res.Indices),
		Scores:   orEmpty(res.Scores),
	})
}

func (s *Server) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := s.ports.Documents.SearchAll(r.Context(), req.Question, req.k())
	writeJSON(w, http.StatusOK, lexicalCollection(res))
}

func (s *Server) handleSearchHybrid(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, ok := s.docName(w, r, req.DocID)
	if !ok {
		return
	}

	res, err := s.ports.Documents.SearchHybrid(r.Context(), req.DocID, req.Question, req.k(), req.weights())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		hybridHitsResponse
		SearchType domain.SearchType `json:"search_type"`
	}{
		hybridHitsResponse: hybridHitsResponse{
			documentHitsResponse: documentHitsResponse{
				DocID:    req.DocID,
				DocName:  name,
				Snippets: orEmpty(res.Snippets),
				Indices:  orEmpty(res.Indices),
				Scores:   orEmpty(res.Scores),
			},
			BM25Scores:     orEmpty(res.BM25Scores),
			SemanticScores: orEmpty(res.SemanticScores),
		},
		SearchType: res.SearchType,
	})
}

func (s *Server) handleSearchAllHybrid(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := s.ports.Documents.SearchAllHybrid(r.Context(), req.Question, req.k(), req.weights())
	writeJSON(w, http.StatusOK, hybridCollection(res))
}

func (s *Server) handleSearchSemantic(w http.ResponseWriter, r *http.Request) {
	if !s.ports.Documents.SemanticEnabled() {
		writeError(w, http.StatusNotImplemented, "Semantic search is not enabled. Set SEMANTIC_SEARCH_ENABLED=true")
		return
	}

	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// An empty doc_id searches every document.
	var docID, docName any
	if req.DocID != "" {
		name, ok := s.docName(w, r, req.DocID)
		if !ok {
			return
		}
		docID, docName = req.DocID, name
	}

	passages, err := s.ports.Documents.SearchSemantic(r.Context(), req.DocID, req.Question, req.k())
	if err != nil {
		writeErr(w, err)
		return
	}

	snippets := make([]string, len(passages))
	scores := make([]float64, len(passages))
	for i, p := range passages {
		snippets[i] = p.Text
		scores[i] = p.Score
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snippets": snippets,
		"scores":   scores,
		"doc_id":   docID,
		"doc_name": docName,
	})
}
