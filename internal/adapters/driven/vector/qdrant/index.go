// Package qdrant provides a vector index backed by a Qdrant server's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second
)

// pointNamespace seeds deterministic point ids so re-indexing a chunk
// overwrites its previous point.
var pointNamespace = uuid.MustParse("6f1b7c2e-4d0a-4f39-9a51-2c8e1d3b7a90")

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection holds the chunk vectors (required).
	Collection string

	// Dimensions is the vector size used when creating the collection.
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index stores chunk vectors in a Qdrant collection.
type Index struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string
	dimensions int

	mu    sync.Mutex
	ready bool
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

type payload struct {
	DocID string `json:"doc_id"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type filter struct {
	Must []condition `json:"must"`
}

type condition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      *filter   `json:"filter,omitempty"`
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload payload `json:"payload"`
	} `json:"result"`
}

type errorResponse struct {
	Status struct {
		Error string `json:"error"`
	} `json:"status"`
}

// NewIndex creates a Qdrant index. The collection is created on first use.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: vector dimensions must be positive")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}, nil
}

// PointID returns the Qdrant point id for a chunk.
func PointID(docID string, index int) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID+"#"+strconv.Itoa(index))).String()
}

// Upsert inserts or replaces records.
func (x *Index) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := x.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]point, len(records))
	for i, r := range records {
		if len(r.Embedding) != x.dimensions {
			return fmt.Errorf("qdrant: vector dimension %d, want %d: %w",
				len(r.Embedding), x.dimensions, domain.ErrInvalidInput)
		}
		points[i] = point{
			ID:      PointID(r.DocID, r.Index),
			Vector:  r.Embedding,
			Payload: payload{DocID: r.DocID, Index: r.Index, Text: r.Text},
		}
	}

	body := map[string]any{"points": points}
	return x.do(ctx, http.MethodPut, x.collectionPath()+"/points?wait=true", body, nil)
}

// DeleteDocument removes every point whose payload belongs to docID.
func (x *Index) DeleteDocument(ctx context.Context, docID string) error {
	if err := x.ensureCollection(ctx); err != nil {
		return err
	}
	body := map[string]any{"filter": docFilter(docID)}
	return x.do(ctx, http.MethodPost, x.collectionPath()+"/points/delete?wait=true", body, nil)
}

// Search returns the k nearest points, optionally restricted to docID.
func (x *Index) Search(ctx context.Context, query []float32, docID string, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if err := x.ensureCollection(ctx); err != nil {
		return nil, err
	}

	req := searchRequest{Vector: query, Limit: k, WithPayload: true}
	if docID != "" {
		req.Filter = docFilter(docID)
	}
	var resp searchResponse
	if err := x.do(ctx, http.MethodPost, x.collectionPath()+"/points/search", req, &resp); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			DocID:      r.Payload.DocID,
			Index:      r.Payload.Index,
			Text:       r.Payload.Text,
			Similarity: r.Score,
		})
	}
	return hits, nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection with cosine distance if the
// server does not have it yet.
func (x *Index) ensureCollection(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ready {
		return nil
	}

	err := x.do(ctx, http.MethodGet, x.collectionPath(), nil, nil)
	if err == nil {
		x.ready = true
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{"size": x.dimensions, "distance": "Cosine"},
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(), body, nil); err != nil {
		return err
	}
	logger.Info("Created Qdrant collection %s (%d dims)", x.collection, x.dimensions)
	x.ready = true
	return nil
}

func (x *Index) collectionPath() string {
	return "/collections/" + x.collection
}

func docFilter(docID string) *filter {
	c := condition{Key: "doc_id"}
	c.Match.Value = docID
	return &filter{Must: []condition{c}}
}

// statusError carries a non-2xx response.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant: status %d: %s", e.code, e.msg)
}

func (e *statusError) Unwrap() error { return domain.ErrVectorIndexUnavailable }

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

func (x *Index) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("qdrant: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.url+path, body)
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: send request: %w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("qdrant: read response: %w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Status.Error != "" {
			msg = er.Status.Error
		}
		return &statusError{code: resp.StatusCode, msg: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("qdrant: decode response: %w", err)
	}
	return nil
}
