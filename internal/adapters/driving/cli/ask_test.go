package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func answeredResult() *domain.OrchestrationResult {
	return &domain.OrchestrationResult{
		ID:          "run-1",
		Query:       "what do cats do?",
		FinalAnswer: "Cats sit on mats.",
		Verdict:     domain.VerdictAccept,
		Attempts:    1,
		SynthesizerEvidence: []domain.Evidence{
			{DocID: "pets", Snippet: "The cat sat on the mat."},
		},
	}
}

func askEvents() []domain.Event {
	return []domain.Event{
		domain.ToolCallEvent("search_document", map[string]any{"doc_id": "pets", "query": "cat"}),
		domain.ToolResultEvent("search_document", map[string]any{"count": 1}),
		domain.JudgeResultEvent(domain.JudgeResult{Verdict: domain.VerdictAccept, Explanation: "supported"}),
	}
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsProgressAndAnswer(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.events = askEvents()
	ts.ask.result = answeredResult()

	out, err := execute(t, "ask", "what do cats do?")

	require.NoError(t, err)
	assert.Equal(t, "what do cats do?", ts.ask.question)
	assert.Contains(t, out, "→ search_document doc_id=pets query=cat")
	assert.Contains(t, out, "1 result(s)")
	assert.Contains(t, out, "judge: accept supported")
	assert.Contains(t, out, "Answer\nCats sit on mats.")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "pets (1 chunks)")
	assert.Contains(t, out, "verdict accept after 1 attempt(s)")
}

func TestAskCmd_PassesMaxAttempts(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.result = answeredResult()

	_, err := execute(t, "ask", "--max-attempts", "2", "q")

	require.NoError(t, err)
	assert.Equal(t, 2, ts.ask.opts.MaxAttempts)
	assert.NotNil(t, ts.ask.opts.Sink)
}

func TestAskCmd_JSONStream(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.events = askEvents()
	ts.ask.result = answeredResult()

	out, err := execute(t, "ask", "--json", "what do cats do?")

	require.NoError(t, err)

	var types []string
	var last map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		types = append(types, ev["type"].(string))
		last = ev
	}
	assert.Equal(t, []string{"tool_call", "tool_result", "judge_result", "chunk", "complete"}, types)
	require.NotNil(t, last)
	citations, ok := last["citations"].([]any)
	require.True(t, ok)
	assert.Len(t, citations, 1)
}

func TestAskCmd_JSONEmptyAnswerOnlyCompletes(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.result = &domain.OrchestrationResult{Verdict: domain.VerdictRetry, Attempts: 3}

	out, err := execute(t, "ask", "--json", "q")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"type":"complete"`)
}

func TestAskCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.err = domain.ErrLLMUnavailable

	_, err := execute(t, "ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAskCmd_JSONErrorEvent(t *testing.T) {
	ts := setupTestServices(t)
	ts.ask.err = errors.New("planner exploded")

	out, err := execute(t, "ask", "--json", "q")

	require.Error(t, err)
	assert.Contains(t, out, `"type":"error"`)
	assert.Contains(t, out, "planner exploded")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	askService = nil

	_, err := execute(t, "ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask service not configured")
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "a=1 b=x", formatArgs(map[string]any{"b": "x", "a": 1}))
	assert.Empty(t, formatArgs(nil))
}

func TestFormatToolResult(t *testing.T) {
	tests := []struct {
		name     string
		result   map[string]any
		expected string
	}{
		{name: "error", result: map[string]any{"error": "missing argument: doc_id"}, expected: "failed: missing argument: doc_id"},
		{name: "count", result: map[string]any{"count": 3}, expected: "3 result(s)"},
		{name: "document", result: map[string]any{"doc_id": "pets"}, expected: "read pets"},
		{name: "other", result: map[string]any{}, expected: "done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatToolResult(tt.result))
		})
	}
}
