package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchHybrid bool
	searchDocID  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search documents",
	Long: `Rank document chunks against a query.

By default the search is keyword (BM25) only. Use --hybrid to fuse BM25
with semantic similarity when semantic search is enabled; without it the
hybrid search falls back to BM25. Use --doc to search a single document.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchHybrid, "hybrid", false, "fuse keyword and semantic ranking")
	searchCmd.Flags().StringVar(&searchDocID, "doc", "", "restrict the search to one document")
	rootCmd.AddCommand(searchCmd)
}

// searchHit is one ranked chunk.
type searchHit struct {
	DocID   string  `json:"doc_id"`
	DocName string  `json:"doc_name"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// searchOutput is the --json shape.
type searchOutput struct {
	Query      string            `json:"query"`
	SearchType domain.SearchType `json:"search_type"`
	Results    []searchHit       `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if documentService == nil {
		return errors.New("document service not configured")
	}

	out, err := search(cmd, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, out)
	}
	return outputSearchTable(cmd, out)
}

func search(cmd *cobra.Command, query string) (*searchOutput, error) {
	ctx := cmd.Context()
	out := &searchOutput{Query: query, SearchType: domain.SearchTypeBM25Only}

	var hits []domain.DocumentHits
	switch {
	case searchDocID != "" && searchHybrid:
		doc, err := documentService.Get(ctx, searchDocID)
		if err != nil {
			return nil, err
		}
		res, err := documentService.SearchHybrid(ctx, searchDocID, query, searchLimit, fusionWeights)
		if err != nil {
			return nil, err
		}
		out.SearchType = res.SearchType
		hits = []domain.DocumentHits{{DocID: doc.ID, DocName: doc.Name, Snippets: res.Snippets, Indices: res.Indices, Scores: res.Scores}}
	case searchDocID != "":
		doc, err := documentService.Get(ctx, searchDocID)
		if err != nil {
			return nil, err
		}
		res, err := documentService.SearchDocument(ctx, searchDocID, query, searchLimit)
		if err != nil {
			return nil, err
		}
		hits = []domain.DocumentHits{{DocID: doc.ID, DocName: doc.Name, Snippets: res.Snippets, Indices: res.Indices, Scores: res.Scores}}
	case searchHybrid:
		res := documentService.SearchAllHybrid(ctx, query, searchLimit, fusionWeights)
		out.SearchType = res.SearchType
		hits = res.Results
	default:
		hits = documentService.SearchAll(ctx, query, searchLimit).Results
	}

	out.Results = rankHits(hits, searchLimit)
	return out, nil
}

// rankHits merges per-document hits into one list by descending score.
func rankHits(hits []domain.DocumentHits, limit int) []searchHit {
	ranked := []searchHit{}
	for _, h := range hits {
		for i := range h.Snippets {
			ranked = append(ranked, searchHit{
				DocID:   h.DocID,
				DocName: h.DocName,
				Index:   h.Indices[i],
				Score:   h.Scores[i],
				Snippet: h.Snippets[i],
			})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func outputSearchJSON(cmd *cobra.Command, out *searchOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, out *searchOutput) error {
	if len(out.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n", out.SearchType)
	cmd.Println()
	for i, r := range out.Results {
		// Format: [N] Name #chunk (Score)
		name := r.DocName
		if name == "" {
			name = r.DocID
		}
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, name, r.Index, r.Score)
		cmd.Printf("      %s\n", truncateSnippet(r.Snippet, 200))
		cmd.Println()
	}
	return nil
}

func truncateSnippet(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
