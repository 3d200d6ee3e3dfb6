package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockDocumentStore implements driven.DocumentStore for testing.
type mockDocumentStore struct {
	mu        sync.Mutex
	docs      map[string]domain.Document
	saveErr   error
	deleteErr error
	listErr   error
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[string]domain.Document)}
}

func (m *mockDocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *mockDocumentStore) DeleteDocument(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockSemanticIndex implements driven.SemanticIndex for testing.
type mockSemanticIndex struct {
	mu        sync.Mutex
	indexed   map[string][]string
	removed   []string
	passages  []domain.SemanticPassage
	searchErr error
	indexErr  error
	searches  int
	calls     []string
	onIndex   func(docID string, chunks []string)
}

func newMockSemanticIndex() *mockSemanticIndex {
	return &mockSemanticIndex{indexed: make(map[string][]string)}
}

func (m *mockSemanticIndex) Index(_ context.Context, docID string, chunks []string) error {
	if m.onIndex != nil {
		m.onIndex(docID, chunks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, strings.Join(chunks, "|"))
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed[docID] = chunks
	return nil
}

func (m *mockSemanticIndex) Remove(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexed, docID)
	m.removed = append(m.removed, docID)
	return nil
}

func (m *mockSemanticIndex) Search(_ context.Context, _, _ string, k int) ([]domain.SemanticPassage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.passages) {
		return m.passages[:k], nil
	}
	return m.passages, nil
}

// splitChunker implements driven.Chunker by splitting on blank lines.
type splitChunker struct{}

func (splitChunker) Split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// recordingSink implements driven.EventSink for testing.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

// mockLLMService implements driven.LLMService for testing.
// Responses are returned in order; the last one repeats.
type mockLLMService struct {
	mu            sync.Mutex
	chatResponses []string
	toolResponses []*driven.ChatResponse
	summary       string
	err           error

	chatMessages [][]driven.ChatMessage
	toolMessages [][]driven.ChatMessage
	toolSpecs    []driven.ToolSpec
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.chatMessages = append(m.chatMessages, messages)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

func (m *mockLLMService) ChatWithTools(
	_ context.Context, messages []driven.ChatMessage, tools []driven.ToolSpec, _ driven.ChatOptions,
) (*driven.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolMessages = append(m.toolMessages, messages)
	m.toolSpecs = tools
	if m.err != nil {
		return nil, m.err
	}
	if len(m.toolResponses) == 0 {
		return &driven.ChatResponse{}, nil
	}
	resp := m.toolResponses[0]
	if len(m.toolResponses) > 1 {
		m.toolResponses = m.toolResponses[1:]
	}
	return resp, nil
}

func (m *mockLLMService) next() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.chatResponses) == 0 {
		return ""
	}
	resp := m.chatResponses[0]
	if len(m.chatResponses) > 1 {
		m.chatResponses = m.chatResponses[1:]
	}
	return resp
}

func (m *mockLLMService) Summarise(_ context.Context, _ string, _ int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.summary, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-model" }
func (m *mockLLMService) Ping(_ context.Context) error { return m.err }
func (m *mockLLMService) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockRunStore implements driven.RunStore for testing.
type mockRunStore struct {
	mu      sync.Mutex
	runs    []domain.RunRecord
	saveErr error
}

func (m *mockRunStore) SaveRun(_ context.Context, run domain.RunRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunStore) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RunRecord, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}
