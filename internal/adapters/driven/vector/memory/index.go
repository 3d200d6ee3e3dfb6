// Package memory provides an in-process vector index using brute-force
// cosine similarity.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index keeps vectors grouped by document.
type Index struct {
	mu        sync.RWMutex
	dimension int
	docs      map[string][]driven.VectorRecord
}

// NewIndex creates an empty index. The dimension is fixed by the first
// upsert.
func NewIndex() *Index {
	return &Index{docs: make(map[string][]driven.VectorRecord)}
}

// Upsert inserts or replaces records keyed by (DocID, Index).
func (x *Index) Upsert(_ context.Context, records []driven.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, r := range records {
		if x.dimension == 0 {
			x.dimension = len(r.Embedding)
		}
		if len(r.Embedding) != x.dimension {
			return fmt.Errorf("memory index: vector dimension %d, want %d: %w",
				len(r.Embedding), x.dimension, domain.ErrInvalidInput)
		}
	}

	for _, r := range records {
		r.Embedding = slices.Clone(r.Embedding)
		existing := x.docs[r.DocID]
		i := slices.IndexFunc(existing, func(e driven.VectorRecord) bool { return e.Index == r.Index })
		if i >= 0 {
			existing[i] = r
		} else {
			existing = append(existing, r)
		}
		x.docs[r.DocID] = existing
	}
	return nil
}

// DeleteDocument removes every vector belonging to a document.
func (x *Index) DeleteDocument(_ context.Context, docID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, docID)
	return nil
}

// Search returns the k most similar vectors, optionally restricted to docID.
// Ties are broken by document then chunk index.
func (x *Index) Search(_ context.Context, query []float32, docID string, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []driven.VectorHit
	scan := func(records []driven.VectorRecord) {
		for _, r := range records {
			hits = append(hits, driven.VectorHit{
				DocID:      r.DocID,
				Index:      r.Index,
				Text:       r.Text,
				Similarity: cosine(query, r.Embedding),
			})
		}
	}
	if docID != "" {
		scan(x.docs[docID])
	} else {
		for _, records := range x.docs {
			scan(records)
		}
	}

	slices.SortFunc(hits, func(a, b driven.VectorHit) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		if c := cmp.Compare(a.DocID, b.DocID); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	if hits == nil {
		hits = []driven.VectorHit{}
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, records := range x.docs {
		n += len(records)
	}
	return n
}

// Close releases resources.
func (x *Index) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
