package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// mockAskService emits scripted events and returns a fixed outcome.
type mockAskService struct {
	events   []domain.Event
	result   *domain.OrchestrationResult
	err      error
	question string
	opts     driving.AskOptions
}

func (m *mockAskService) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.OrchestrationResult, error) {
	m.question = question
	m.opts = opts
	for _, ev := range m.events {
		opts.Sink.Emit(ev)
	}
	return m.result, m.err
}

// mockSummariser records the text it was asked to summarise.
type mockSummariser struct {
	summary string
	err     error
	calls   int
	content string
}

func (m *mockSummariser) Summarise(_ context.Context, content string, _ int) (string, error) {
	m.calls++
	m.content = content
	return m.summary, m.err
}

func newCollection() *services.DocumentCollection {
	return services.NewDocumentCollection(chunker.New(), nil, nil)
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func addDoc(t *testing.T, docs driving.DocumentService, id, name, content string) {
	t.Helper()
	_, err := docs.Add(context.Background(), driving.AddDocumentRequest{ID: id, Name: name, Description: "about " + name, Content: content})
	require.NoError(t, err)
}

// do sends a JSON request through the server's handler.
func do(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// readEvents splits an NDJSON body into decoded events.
func readEvents(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(rec.Body.Bytes()))
	for scanner.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev), scanner.Text())
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func eventTypes(events []map[string]any) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i], _ = ev["type"].(string)
	}
	return types
}
