package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func rec(doc string, i int, v ...float32) driven.VectorRecord {
	return driven.VectorRecord{DocID: doc, Index: i, Text: doc + "-chunk", Embedding: v}
}

func TestIndex_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	x := NewIndex()
	require.NoError(t, x.Upsert(ctx, []driven.VectorRecord{
		rec("a", 0, 1, 0),
		rec("a", 1, 0, 1),
		rec("b", 0, 1, 1),
	}))

	hits, err := x.Search(ctx, []float32{1, 0}, "", 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].DocID)
	assert.Equal(t, 0, hits[0].Index)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "b", hits[1].DocID)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-3)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-9)
}

func TestIndex_SearchFiltersByDocument(t *testing.T) {
	ctx := context.Background()
	x := NewIndex()
	require.NoError(t, x.Upsert(ctx, []driven.VectorRecord{rec("a", 0, 1, 0), rec("b", 0, 1, 0)}))

	hits, err := x.Search(ctx, []float32{1, 0}, "b", 5)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].DocID)

	none, err := x.Search(ctx, []float32{1, 0}, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	zero, err := x.Search(ctx, []float32{1, 0}, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, zero)
	assert.Empty(t, zero)
}

func TestIndex_UpsertReplacesAndDeletes(t *testing.T) {
	ctx := context.Background()
	x := NewIndex()
	require.NoError(t, x.Upsert(ctx, []driven.VectorRecord{rec("a", 0, 1, 0), rec("a", 1, 0, 1)}))
	require.NoError(t, x.Upsert(ctx, []driven.VectorRecord{rec("a", 0, 0, 1)}))
	assert.Equal(t, 2, x.Len())

	hits, err := x.Search(ctx, []float32{0, 1}, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, hits[0].Index, "ties break on chunk index")

	require.NoError(t, x.DeleteDocument(ctx, "a"))
	assert.Equal(t, 0, x.Len())
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	x := NewIndex()
	require.NoError(t, x.Upsert(ctx, []driven.VectorRecord{rec("a", 0, 1, 0)}))

	err := x.Upsert(ctx, []driven.VectorRecord{rec("b", 0, 1, 0, 0)})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, x.Len())
}
