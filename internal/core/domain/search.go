package domain

// SearchType marks which rankers contributed to a result.
type SearchType string

// Available search types.
const (
	// SearchTypeHybrid means lexical and semantic scores were fused.
	SearchTypeHybrid SearchType = "hybrid"

	// SearchTypeBM25Only means the semantic capability was disabled or failed
	// and the result is the lexical ranking alone.
	SearchTypeBM25Only SearchType = "bm25_only"
)

// String returns the string representation.
func (t SearchType) String() string {
	return string(t)
}

// Default retrieval values.
const (
	// DefaultTopK is the number of snippets returned per search.
	DefaultTopK = 5

	// DefaultBM25Weight is the lexical share of the combined hybrid score.
	DefaultBM25Weight = 0.4

	// DefaultSemanticWeight is the semantic share of the combined hybrid score.
	DefaultSemanticWeight = 0.6
)

// FusionWeights scales normalised scores before they are summed.
// The weights are not required to sum to one.
type FusionWeights struct {
	BM25     float64
	Semantic float64
}

// DefaultFusionWeights returns the 0.4 / 0.6 split.
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{BM25: DefaultBM25Weight, Semantic: DefaultSemanticWeight}
}

// LexicalResult is a ranked list of chunks from one document.
// The three slices are parallel and ordered by descending score.
type LexicalResult struct {
	Snippets []string
	Indices  []int
	Scores   []float64
}

// Len returns the number of hits.
func (r LexicalResult) Len() int {
	return len(r.Snippets)
}

// SemanticPassage is a passage returned by the semantic index with its raw
// similarity score. Passages need not match chunk text exactly.
type SemanticPassage struct {
	DocID string
	Index int
	Text  string
	Score float64
}

// HybridResult is the fused ranking for one document.
type HybridResult struct {
	Snippets       []string
	Indices        []int
	Scores         []float64
	BM25Scores     []float64
	SemanticScores []float64
	SearchType     SearchType
}

// DocumentHits groups the snippets found in one document during a
// collection-wide search.
type DocumentHits struct {
	DocID          string
	DocName        string
	Snippets       []string
	Indices        []int
	Scores         []float64
	BM25Scores     []float64
	SemanticScores []float64
}

// CollectionResult is the outcome of searching every document.
type CollectionResult struct {
	Results         []DocumentHits
	TotalDocs       int
	DocsWithResults int
	SearchType      SearchType
}
