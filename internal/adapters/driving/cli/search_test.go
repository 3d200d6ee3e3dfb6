package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "BM25")
	assert.Contains(t, searchCmd.Long, "--hybrid")
	assert.Contains(t, searchCmd.Long, "--doc")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func seedSearchDocs(t *testing.T, ts *testServices) {
	t.Helper()
	addDoc(t, ts, "pets", "Pets", "The cat sat on the mat.\n\nThe dog ran in the park.")
	addDoc(t, ts, "cars", "Cars", "Engines need oil.\n\nA cat once slept in the garage.")
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "search", "anything")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_SearchesAllDocuments(t *testing.T) {
	ts := setupTestServices(t)
	seedSearchDocs(t, ts)

	out, err := execute(t, "search", "cat")

	require.NoError(t, err)
	assert.Contains(t, out, "Results (bm25_only):")
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "Cars")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	seedSearchDocs(t, ts)

	out, err := execute(t, "search", "--json", "-n", "3", "cat")

	require.NoError(t, err)
	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "cat", got.Query)
	assert.Equal(t, domain.SearchTypeBM25Only, got.SearchType)
	require.Len(t, got.Results, 3)
	for i := 1; i < len(got.Results); i++ {
		assert.GreaterOrEqual(t, got.Results[i-1].Score, got.Results[i].Score)
	}
}

func TestSearchCmd_SingleDocument(t *testing.T) {
	ts := setupTestServices(t)
	seedSearchDocs(t, ts)

	out, err := execute(t, "search", "--json", "--doc", "pets", "dog")

	require.NoError(t, err)
	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.Results)
	for _, r := range got.Results {
		assert.Equal(t, "pets", r.DocID)
		assert.Equal(t, "Pets", r.DocName)
	}
	assert.Equal(t, 1, got.Results[0].Index)
}

func TestSearchCmd_HybridWithoutSemanticFallsBack(t *testing.T) {
	ts := setupTestServices(t)
	seedSearchDocs(t, ts)

	out, err := execute(t, "search", "--json", "--hybrid", "--doc", "pets", "cat")

	require.NoError(t, err)
	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.SearchTypeBM25Only, got.SearchType)
	require.NotEmpty(t, got.Results)
	assert.Equal(t, 0, got.Results[0].Index)
}

func TestSearchCmd_UnknownDocument(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search", "--doc", "missing", "cat")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	documentService = nil

	_, err := execute(t, "search", "cat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}

func TestRankHits(t *testing.T) {
	hits := []domain.DocumentHits{
		{DocID: "a", DocName: "A", Snippets: []string{"a0", "a1"}, Indices: []int{0, 1}, Scores: []float64{0.9, 0.1}},
		{DocID: "b", DocName: "B", Snippets: []string{"b3"}, Indices: []int{3}, Scores: []float64{0.5}},
	}

	ranked := rankHits(hits, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "a0", ranked[0].Snippet)
	assert.Equal(t, searchHit{DocID: "b", DocName: "B", Index: 3, Score: 0.5, Snippet: "b3"}, ranked[1])
	assert.Len(t, rankHits(hits, 0), 3, "zero limit keeps everything")
	assert.Empty(t, rankHits(nil, 5))
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "short", truncateSnippet("short", 10))
	assert.Equal(t, "héllo...", truncateSnippet("héllo world", 5))
}
