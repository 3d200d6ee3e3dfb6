package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// BM25 Okapi parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// LexicalIndex is a BM25 Okapi ranking over the chunks of one document.
// It is immutable once built; changed chunks require a new index.
type LexicalIndex struct {
	chunks    []string
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// NewLexicalIndex builds an index over chunks.
func NewLexicalIndex(chunks []string) *LexicalIndex {
	idx := &LexicalIndex{
		chunks:    chunks,
		termFreqs: make([]map[string]int, len(chunks)),
		docLens:   make([]int, len(chunks)),
		idf:       make(map[string]float64),
	}
	if len(chunks) == 0 {
		return idx
	}

	docFreq := make(map[string]int)
	total := 0
	for i, chunk := range chunks {
		tokens := Tokenize(chunk)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			docFreq[tok]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = len(tokens)
		total += len(tokens)
	}
	idx.avgDocLen = float64(total) / float64(len(chunks))

	n := float64(len(chunks))
	for tok, df := range docFreq {
		idx.idf[tok] = math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
	}

	return idx
}

// Len returns the number of indexed chunks.
func (x *LexicalIndex) Len() int {
	return len(x.chunks)
}

// Scores returns the BM25 score of every chunk for query, by chunk index.
func (x *LexicalIndex) Scores(query string) []float64 {
	scores := make([]float64, len(x.chunks))
	if len(x.chunks) == 0 {
		return scores
	}

	terms := Tokenize(query)
	for i, tf := range x.termFreqs {
		norm := bm25K1 * (1 - bm25B + bm25B*float64(x.docLens[i])/x.avgDocLen)
		var s float64
		for _, term := range terms {
			f, ok := tf[term]
			if !ok {
				continue
			}
			ff := float64(f)
			s += x.idf[term] * ff * (bm25K1 + 1) / (ff + norm)
		}
		scores[i] = s
	}
	return scores
}

// Search returns the top k chunks by descending score. Ties keep ascending
// chunk order, so an unmatched query returns the first k chunks with zero
// scores.
func (x *LexicalIndex) Search(query string, k int) domain.LexicalResult {
	if len(x.chunks) == 0 || k <= 0 {
		return domain.LexicalResult{Snippets: []string{}, Indices: []int{}, Scores: []float64{}}
	}

	scores := x.Scores(query)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	res := domain.LexicalResult{
		Snippets: make([]string, k),
		Indices:  make([]int, k),
		Scores:   make([]float64, k),
	}
	for i, idx := range order[:k] {
		res.Snippets[i] = x.chunks[idx]
		res.Indices[i] = idx
		res.Scores[i] = scores[idx]
	}
	return res
}

// Tokenize lower-cases text, splits on whitespace, trims surrounding
// punctuation and folds a simple plural "s".
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f == "" {
			continue
		}
		tokens = append(tokens, foldPlural(f))
	}
	return tokens
}

func foldPlural(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}

// wordSet returns the distinct lower-cased whitespace tokens of text.
// Fusion compares passages by raw words, not by BM25 tokens.
func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
