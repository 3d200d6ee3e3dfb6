package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentCollection implements the interface.
var _ driving.DocumentService = (*DocumentCollection)(nil)

// collectionEntry pairs a document with the index built from its chunks.
// Entries are replaced wholesale, never mutated.
type collectionEntry struct {
	doc   domain.Document
	index *LexicalIndex
}

// DocumentCollection owns every document, its chunks and its lexical index.
// Entries are built outside the lock and swapped in under it, so readers
// never observe a partially built index. The semantic index and the
// document store are called outside the lock, but writes to one document
// id are serialized end to end so its vectors always match its entry.
type DocumentCollection struct {
	mu      sync.RWMutex
	entries map[string]*collectionEntry
	writes  docLocks

	chunker  driven.Chunker
	store    driven.DocumentStore
	semantic driven.SemanticIndex

	semanticDefault bool
	now             func() time.Time
}

// NewDocumentCollection creates a collection.
// The store and semantic parameters are optional (can be nil).
func NewDocumentCollection(
	chunker driven.Chunker,
	store driven.DocumentStore,
	semantic driven.SemanticIndex,
) *DocumentCollection {
	return &DocumentCollection{
		entries:         make(map[string]*collectionEntry),
		chunker:         chunker,
		store:           store,
		semantic:        semantic,
		semanticDefault: true,
		now:             time.Now,
	}
}

// SetSemanticDefault controls whether documents are semantically indexed
// when a request does not say.
func (c *DocumentCollection) SetSemanticDefault(enabled bool) {
	c.semanticDefault = enabled
}

// SemanticEnabled reports whether a semantic index is attached.
func (c *DocumentCollection) SemanticEnabled() bool {
	return c.semantic != nil
}

// Add chunks, indexes and persists a document.
func (c *DocumentCollection) Add(ctx context.Context, req driving.AddDocumentRequest) (*domain.DocumentSummary, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, fmt.Errorf("add document: id is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("add document %q: %w", req.ID, domain.ErrEmptyContent)
	}

	unlock := c.writes.lock(req.ID)
	defer unlock()

	now := c.now()
	doc := domain.Document{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev, ok := c.lookup(req.ID); ok {
		doc.CreatedAt = prev.doc.CreatedAt
	}

	if c.store != nil {
		if err := c.store.SaveDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("add document %q: persist: %w", req.ID, err)
		}
	}

	semantic := c.semanticDefault
	if req.Semantic != nil {
		semantic = *req.Semantic
	}
	entry := c.put(ctx, doc, semantic)

	logger.Debug("Added document %q (%d chunks)", req.ID, len(entry.doc.Chunks))
	summary := entry.doc.Summary()
	return &summary, nil
}

// LoadPersisted restores every document from the store. Persisted documents
// are re-chunked and re-indexed but not written back.
func (c *DocumentCollection) LoadPersisted(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}

	docs, err := c.store.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("load persisted documents: %w", err)
	}

	loaded := 0
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			logger.Warn("Skipping persisted document %q with empty content", doc.ID)
			continue
		}
		unlock := c.writes.lock(doc.ID)
		c.put(ctx, doc, c.semanticDefault)
		unlock()
		loaded++
	}
	logger.Info("Loaded %d persisted documents", loaded)
	return loaded, nil
}

// put builds an entry and swaps it into the collection. The caller holds
// the write lock for doc.ID.
func (c *DocumentCollection) put(ctx context.Context, doc domain.Document, semantic bool) *collectionEntry {
	doc.Chunks = c.chunker.Split(doc.Content)
	entry := &collectionEntry{
		doc:   doc,
		index: NewLexicalIndex(doc.Chunks),
	}

	c.mu.Lock()
	c.entries[doc.ID] = entry
	c.mu.Unlock()

	if c.semantic != nil {
		if semantic {
			if err := c.semantic.Index(ctx, doc.ID, doc.Chunks); err != nil {
				logger.Warn("Semantic indexing failed for %q: %v", doc.ID, err)
			}
		} else if err := c.semantic.Remove(ctx, doc.ID); err != nil {
			logger.Warn("Removing stale vectors failed for %q: %v", doc.ID, err)
		}
	}

	return entry
}

// Remove deletes a document from the collection, its store and its vectors.
func (c *DocumentCollection) Remove(ctx context.Context, docID string) error {
	unlock := c.writes.lock(docID)
	defer unlock()

	if _, ok := c.lookup(docID); !ok {
		return fmt.Errorf("remove document %q: %w", docID, domain.ErrNotFound)
	}

	if c.store != nil {
		if err := c.store.DeleteDocument(ctx, docID); err != nil {
			return fmt.Errorf("remove document %q: %w", docID, err)
		}
	}

	c.mu.Lock()
	delete(c.entries, docID)
	c.mu.Unlock()

	if c.semantic != nil {
		if err := c.semantic.Remove(ctx, docID); err != nil {
			logger.Warn("Removing vectors failed for %q: %v", docID, err)
		}
	}
	return nil
}

// Get retrieves a copy of a document.
func (c *DocumentCollection) Get(_ context.Context, docID string) (*domain.Document, error) {
	entry, ok := c.lookup(docID)
	if !ok {
		return nil, fmt.Errorf("get document %q: %w", docID, domain.ErrNotFound)
	}
	doc := entry.doc
	doc.Chunks = append([]string(nil), entry.doc.Chunks...)
	return &doc, nil
}

// List returns summaries of every document ordered by ID.
func (c *DocumentCollection) List(_ context.Context) []domain.DocumentSummary {
	entries := c.snapshot()
	out := make([]domain.DocumentSummary, len(entries))
	for i, e := range entries {
		out[i] = e.doc.Summary()
	}
	return out
}

// SearchDocument ranks one document's chunks lexically.
func (c *DocumentCollection) SearchDocument(_ context.Context, docID, query string, k int) (*domain.LexicalResult, error) {
	entry, ok := c.lookup(docID)
	if !ok {
		return nil, fmt.Errorf("search document %q: %w", docID, domain.ErrNotFound)
	}
	res := entry.index.Search(query, topK(k))
	return &res, nil
}

// SearchAll ranks every document's chunks lexically. Documents without
// chunks are counted but not reported.
func (c *DocumentCollection) SearchAll(_ context.Context, query string, k int) *domain.CollectionResult {
	entries := c.snapshot()
	res := &domain.CollectionResult{
		Results:   []domain.DocumentHits{},
		TotalDocs: len(entries),
	}

	k = topK(k)
	for _, e := range entries {
		lex := e.index.Search(query, k)
		if lex.Len() == 0 {
			continue
		}
		res.Results = append(res.Results, domain.DocumentHits{
			DocID:    e.doc.ID,
			DocName:  e.doc.Name,
			Snippets: lex.Snippets,
			Indices:  lex.Indices,
			Scores:   lex.Scores,
		})
	}
	res.DocsWithResults = len(res.Results)
	logger.Debug("search_all %q: %d/%d documents", query, res.DocsWithResults, res.TotalDocs)
	return res
}

// SearchHybrid fuses the document's lexical top 2k with its semantic top k.
// When the semantic index is missing, fails or has nothing for the document
// the lexical top k is returned as bm25_only; only an unknown document is an
// error.
func (c *DocumentCollection) SearchHybrid(
	ctx context.Context, docID, query string, k int, weights domain.FusionWeights,
) (*domain.HybridResult, error) {
	entry, ok := c.lookup(docID)
	if !ok {
		return nil, fmt.Errorf("search hybrid %q: %w", docID, domain.ErrNotFound)
	}
	res := c.hybrid(ctx, entry, query, topK(k), weights)
	return &res, nil
}

func (c *DocumentCollection) hybrid(
	ctx context.Context, entry *collectionEntry, query string, k int, weights domain.FusionWeights,
) domain.HybridResult {
	if c.semantic == nil {
		return lexicalOnly(entry.index.Search(query, k))
	}

	passages, err := c.semantic.Search(ctx, entry.doc.ID, query, k)
	if err != nil {
		logger.Warn("Semantic search failed for %q, falling back to BM25: %v", entry.doc.ID, err)
		return lexicalOnly(entry.index.Search(query, k))
	}
	if len(passages) == 0 {
		logger.Debug("No semantic passages for %q, using BM25", entry.doc.ID)
		return lexicalOnly(entry.index.Search(query, k))
	}

	hits := Fuse(entry.index.Search(query, 2*k), passages, k, weights)
	res := domain.HybridResult{
		Snippets:       make([]string, len(hits)),
		Indices:        make([]int, len(hits)),
		Scores:         make([]float64, len(hits)),
		BM25Scores:     make([]float64, len(hits)),
		SemanticScores: make([]float64, len(hits)),
		SearchType:     domain.SearchTypeHybrid,
	}
	for i, h := range hits {
		res.Snippets[i] = h.Snippet
		res.Indices[i] = h.Index
		res.Scores[i] = h.Score
		res.BM25Scores[i] = h.BM25Score
		res.SemanticScores[i] = h.SemanticScore
	}
	return res
}

func lexicalOnly(lex domain.LexicalResult) domain.HybridResult {
	return domain.HybridResult{
		Snippets:       lex.Snippets,
		Indices:        lex.Indices,
		Scores:         lex.Scores,
		BM25Scores:     lex.Scores,
		SemanticScores: []float64{},
		SearchType:     domain.SearchTypeBM25Only,
	}
}

// SearchAllHybrid runs SearchHybrid over every document. The search type is
// hybrid only when no document fell back to lexical ranking.
func (c *DocumentCollection) SearchAllHybrid(
	ctx context.Context, query string, k int, weights domain.FusionWeights,
) *domain.CollectionResult {
	entries := c.snapshot()
	res := &domain.CollectionResult{
		Results:    []domain.DocumentHits{},
		TotalDocs:  len(entries),
		SearchType: domain.SearchTypeBM25Only,
	}

	k = topK(k)
	allHybrid := c.semantic != nil
	for _, e := range entries {
		h := c.hybrid(ctx, e, query, k, weights)
		if h.SearchType != domain.SearchTypeHybrid {
			allHybrid = false
		}
		if len(h.Snippets) == 0 {
			continue
		}
		res.Results = append(res.Results, domain.DocumentHits{
			DocID:          e.doc.ID,
			DocName:        e.doc.Name,
			Snippets:       h.Snippets,
			Indices:        h.Indices,
			Scores:         h.Scores,
			BM25Scores:     h.BM25Scores,
			SemanticScores: h.SemanticScores,
		})
	}
	res.DocsWithResults = len(res.Results)
	if allHybrid {
		res.SearchType = domain.SearchTypeHybrid
	}
	return res
}

// SearchSemantic ranks passages by meaning alone. An empty docID searches
// every document.
func (c *DocumentCollection) SearchSemantic(ctx context.Context, docID, query string, k int) ([]domain.SemanticPassage, error) {
	if c.semantic == nil {
		return nil, domain.ErrSemanticUnavailable
	}
	if docID != "" {
		if _, ok := c.lookup(docID); !ok {
			return nil, fmt.Errorf("search semantic %q: %w", docID, domain.ErrNotFound)
		}
	}

	passages, err := c.semantic.Search(ctx, docID, query, topK(k))
	if err != nil {
		return nil, fmt.Errorf("search semantic: %w", err)
	}
	return passages, nil
}

func (c *DocumentCollection) lookup(docID string) (*collectionEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[docID]
	return e, ok
}

// snapshot returns the current entries ordered by document ID.
func (c *DocumentCollection) snapshot() []*collectionEntry {
	c.mu.RLock()
	out := make([]*collectionEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].doc.ID < out[j].doc.ID })
	return out
}

func topK(k int) int {
	if k <= 0 {
		return domain.DefaultTopK
	}
	return k
}

// docLocks hands out one mutex per document id. Entries are dropped once no
// writer holds or waits on them.
type docLocks struct {
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	sync.Mutex
	refs int
}

func (d *docLocks) lock(id string) (unlock func()) {
	d.mu.Lock()
	if d.locks == nil {
		d.locks = make(map[string]*docLock)
	}
	l, ok := d.locks[id]
	if !ok {
		l = &docLock{}
		d.locks[id] = l
	}
	l.refs++
	d.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		d.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(d.locks, id)
		}
		d.mu.Unlock()
	}
}
