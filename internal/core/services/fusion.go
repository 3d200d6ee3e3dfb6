package services

import (
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// FusedHit is one chunk after lexical and semantic scores were combined.
type FusedHit struct {
	Snippet       string
	Index         int
	Score         float64
	BM25Score     float64
	SemanticScore float64
}

// Normalize min-max scales scores into [0, 1]. When every score is equal
// each becomes 1.0.
func Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make([]float64, len(scores))
	if hi == lo {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	span := hi - lo
	for i, s := range scores {
		out[i] = (s - lo) / span
	}
	return out
}

type fusionRecord struct {
	snippet string
	index   int
	rank    int
	words   map[string]struct{}
	lex     float64
	sem     float64
}

// Fuse merges a lexical ranking with semantic passages and returns the top k
// by combined score. Each passage lends its normalised score to the lexical
// record sharing the most words with it; the earliest-ranked record wins a
// tie and passages sharing no words are dropped. A later passage attaching to
// the same record replaces the earlier score.
func Fuse(lex domain.LexicalResult, semantic []domain.SemanticPassage, k int, w domain.FusionWeights) []FusedHit {
	lexNorm := Normalize(lex.Scores)

	records := make([]*fusionRecord, 0, lex.Len())
	seen := make(map[string]*fusionRecord, lex.Len())
	for i, snippet := range lex.Snippets {
		if rec, ok := seen[snippet]; ok {
			rec.lex = lexNorm[i]
			continue
		}
		rec := &fusionRecord{
			snippet: snippet,
			index:   lex.Indices[i],
			rank:    len(records),
			words:   wordSet(snippet),
			lex:     lexNorm[i],
		}
		seen[snippet] = rec
		records = append(records, rec)
	}

	semScores := make([]float64, len(semantic))
	for i, p := range semantic {
		semScores[i] = p.Score
	}
	semNorm := Normalize(semScores)

	for i, p := range semantic {
		words := wordSet(p.Text)
		var best *fusionRecord
		bestOverlap := 0
		for _, rec := range records {
			overlap := 0
			for word := range words {
				if _, ok := rec.words[word]; ok {
					overlap++
				}
			}
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = rec
			}
		}
		if best != nil {
			best.sem = semNorm[i]
		}
	}

	hits := make([]FusedHit, len(records))
	for i, rec := range records {
		hits[i] = FusedHit{
			Snippet:       rec.snippet,
			Index:         rec.index,
			Score:         w.BM25*rec.lex + w.Semantic*rec.sem,
			BM25Score:     rec.lex,
			SemanticScore: rec.sem,
		}
	}
	// records are in lexical rank order, so a stable sort keeps rank on ties
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k < 0 {
		k = 0
	}
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
