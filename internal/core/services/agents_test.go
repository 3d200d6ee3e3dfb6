package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestExtractDraftAnswer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "marker block",
			input:    "PLAN: look\n=== DRAFT_ANSWER ===\n  Cats sleep a lot.  \n=== END_DRAFT_ANSWER ===\ntrailing",
			expected: "Cats sleep a lot.",
		},
		{
			name:     "labelled line",
			input:    "thinking...\ndraft_answer: Dogs bark.\nmore",
			expected: "Dogs bark.",
		},
		{
			name:     "labelled line without colon falls through",
			input:    "DRAFT_ANSWER follows\n",
			expected: "DRAFT_ANSWER follows",
		},
		{
			name:     "start marker only",
			input:    "=== DRAFT_ANSWER === unfinished",
			expected: "=== DRAFT_ANSWER === unfinished",
		},
		{
			name:     "raw text",
			input:    "  just an answer \n",
			expected: "just an answer",
		},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDraftAnswer(tt.input))
		})
	}
}

func TestParseJudgeOutput(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		res := ParseJudgeOutput(`{"verdict":"accept","critique":"good","missing":""}`)
		assert.Equal(t, domain.VerdictAccept, res.Verdict)
		assert.False(t, res.RequiresMoreEvidence)
		assert.Equal(t, "good\n", res.Explanation)
		assert.True(t, res.Accepted())
	})

	t.Run("retry in json fence", func(t *testing.T) {
		text := "Here you go\n```json\n{\"verdict\":\"retry\",\"critique\":\"thin\",\"missing\":\"dates\"," +
			"\"suggested_queries\":[\"when\"],\"target_docs\":[\"a\"]}\n```"
		res := ParseJudgeOutput(text)
		assert.Equal(t, domain.VerdictRetry, res.Verdict)
		assert.True(t, res.RequiresMoreEvidence)
		assert.Equal(t, "thin\ndates", res.Explanation)
		assert.Equal(t, []string{"when"}, res.SuggestedQueries)
		assert.Equal(t, []string{"a"}, res.TargetDocs)
	})

	t.Run("plain fence", func(t *testing.T) {
		res := ParseJudgeOutput("```\n{\"verdict\":\"accept\"}\n```")
		assert.Equal(t, domain.VerdictAccept, res.Verdict)
	})

	t.Run("missing verdict defaults to retry", func(t *testing.T) {
		res := ParseJudgeOutput(`{}`)
		assert.Equal(t, domain.VerdictRetry, res.Verdict)
		assert.True(t, res.RequiresMoreEvidence)
	})

	t.Run("malformed", func(t *testing.T) {
		res := ParseJudgeOutput("not json at all")
		assert.Equal(t, domain.VerdictRetry, res.Verdict)
		assert.False(t, res.RequiresMoreEvidence)
		assert.Equal(t, "Failed to parse judge output: not json at all", res.Explanation)
	})
}

func TestBuildPlannerPrompt(t *testing.T) {
	t.Run("first round", func(t *testing.T) {
		p := BuildPlannerPrompt(PlanRequest{Query: "what is go?"})
		assert.True(t, strings.HasPrefix(p, "Question: what is go?\n"))
		assert.NotContains(t, p, "CRITIQUE")
		assert.NotContains(t, p, "Evidence collected so far")
		assert.Contains(t, p, "If you need more info, call tools.")
	})

	t.Run("retry with evidence", func(t *testing.T) {
		p := BuildPlannerPrompt(PlanRequest{
			Query:     "q",
			Evidence:  []domain.Evidence{{DocID: "d1", Snippet: "s1"}},
			LastJudge: &domain.JudgeResult{Verdict: domain.VerdictRetry, Explanation: "too vague"},
		})
		assert.Contains(t, p, "CRITIQUE FROM PREVIOUS ATTEMPT:\nThe Judge rejected your previous answer. Reason:\ntoo vague\n")
		assert.Contains(t, p, "\nEvidence collected so far:\n- {\"doc_id\":\"d1\",\"snippet\":\"s1\"}\n")
	})

	t.Run("accepted last judge adds no critique", func(t *testing.T) {
		p := BuildPlannerPrompt(PlanRequest{
			Query:     "q",
			LastJudge: &domain.JudgeResult{Verdict: domain.VerdictAccept},
		})
		assert.NotContains(t, p, "CRITIQUE")
	})

	t.Run("last attempt", func(t *testing.T) {
		p := BuildPlannerPrompt(PlanRequest{Query: "q", IsLastAttempt: true})
		assert.Contains(t, p, "THIS IS YOUR LAST ATTEMPT. DO NOT CALL TOOLS.")
		assert.NotContains(t, p, "If you need more info, call tools.")
	})
}

func TestLLMAgents_Plan(t *testing.T) {
	llm := &mockLLMService{toolResponses: []*driven.ChatResponse{{
		Text: "PLAN: search",
		ToolCalls: []driven.FunctionCall{
			{Name: ToolListDocuments},
			{Name: ""},
			{Name: ToolSearchAllHybrid, Arguments: map[string]any{"query": "go"}},
		},
	}}}
	agents := NewLLMAgents(llm, 7)

	res, err := agents.Plan(context.Background(), PlanRequest{Query: "what is go?"})

	require.NoError(t, err)
	assert.Equal(t, "PLAN: search", res.RawText)
	assert.Empty(t, res.DraftAnswer)
	require.Len(t, res.ToolCalls, 2)
	assert.Equal(t, ToolSearchAllHybrid, res.ToolCalls[1].Name)

	require.Len(t, llm.toolMessages, 1)
	assert.Equal(t, "system", llm.toolMessages[0][0].Role)
	assert.Contains(t, llm.toolMessages[0][0].Content, "Use k=7 for searches.")
	assert.Len(t, llm.toolSpecs, len(ToolSpecs()))
}

func TestLLMAgents_PlanLastAttemptDropsToolCalls(t *testing.T) {
	llm := &mockLLMService{toolResponses: []*driven.ChatResponse{{
		Text:      "=== DRAFT_ANSWER ===\nfinal\n=== END_DRAFT_ANSWER ===",
		ToolCalls: []driven.FunctionCall{{Name: ToolListDocuments}},
	}}}

	res, err := NewLLMAgents(llm, 0).Plan(context.Background(), PlanRequest{Query: "q", IsLastAttempt: true})

	require.NoError(t, err)
	assert.Empty(t, res.ToolCalls)
}

func TestLLMAgents_PlanError(t *testing.T) {
	llm := &mockLLMService{err: errors.New("connection refused")}

	_, err := NewLLMAgents(llm, 5).Plan(context.Background(), PlanRequest{Query: "q"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLLMAgents_CustomPrompts(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{`{"verdict":"accept"}`}}
	agents := NewLLMAgents(llm, 5)
	agents.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptJudgeSystem:   "custom judge",
		driven.PromptPlannerSystem: "custom planner without placeholder",
	}})

	_, err := agents.Judge(context.Background(), "q", &domain.PlannerResult{DraftAnswer: "d"})
	require.NoError(t, err)
	_, err = agents.Plan(context.Background(), PlanRequest{Query: "q"})
	require.NoError(t, err)

	assert.Equal(t, "custom judge", llm.chatMessages[0][0].Content)
	assert.Equal(t, "custom planner without placeholder", llm.toolMessages[0][0].Content)
}

func TestLLMAgents_Judge(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{`{"verdict":"retry","critique":"c","missing":"m"}`}}

	res, err := NewLLMAgents(llm, 5).Judge(context.Background(), "q", &domain.PlannerResult{
		DraftAnswer: "cats purr",
		Evidence:    []domain.Evidence{{DocID: "cats", Snippet: "cats purr when happy"}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictRetry, res.Verdict)
	user := llm.chatMessages[0][1].Content
	assert.True(t, strings.HasPrefix(user, "Draft Answer: cats purr\nEvidence:\n- "))
	assert.Contains(t, user, "cats purr when happy")
	assert.Equal(t, domain.DefaultJudgePrompt, llm.chatMessages[0][0].Content)
}

func TestLLMAgents_JudgeEmptyReply(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{"  "}}

	res, err := NewLLMAgents(llm, 5).Judge(context.Background(), "q", &domain.PlannerResult{})

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictRetry, res.Verdict)
	assert.True(t, res.RequiresMoreEvidence)
}

func TestLLMAgents_Synthesize(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{
		"noise\n=== DRAFT_ANSWER ===\nPolished.\n=== END_DRAFT_ANSWER ===",
	}}
	long := strings.Repeat("x", maxSnippetChars+10)
	ev := []domain.Evidence{{DocID: "big", Snippet: long}}

	res, err := NewLLMAgents(llm, 5).Synthesize(context.Background(), SynthesisRequest{
		Query:       "q",
		DraftAnswer: "rough",
		Evidence:    ev,
	})

	require.NoError(t, err)
	assert.Equal(t, "Polished.", res.DraftAnswer)
	assert.Equal(t, ev, res.Evidence)

	user := llm.chatMessages[0][1].Content
	assert.True(t, strings.HasPrefix(user, "USER_QUESTION: q\nLATEST_DRAFT_ANSWER: rough\n\nCONTEXT_SNIPPETS:\n"))
	assert.Contains(t, user, truncatedSuffix)
	assert.NotContains(t, user, long)
	assert.Len(t, ev[0].Snippet, maxSnippetChars+10, "caller evidence must not be modified")
}

func TestLLMAgents_SynthesizeTruncatesOnRuneBoundary(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{"ok"}}
	snippet := strings.Repeat("a", maxSnippetChars-1) + strings.Repeat("é", 10)

	_, err := NewLLMAgents(llm, 5).Synthesize(context.Background(), SynthesisRequest{
		Query:    "q",
		Evidence: []domain.Evidence{{DocID: "accents", Snippet: snippet}},
	})

	require.NoError(t, err)
	user := llm.chatMessages[0][1].Content
	assert.True(t, utf8.ValidString(user))
	assert.NotContains(t, user, "\ufffd")
	assert.NotContains(t, user, `\ufffd`, "evidence is JSON encoded, so a split rune shows up escaped")
	assert.Contains(t, user, strings.Repeat("a", maxSnippetChars-1)+"é"+truncatedSuffix)
	assert.NotContains(t, user, "éé"+truncatedSuffix)
}

func TestLLMAgents_SynthesizeWithoutMarkers(t *testing.T) {
	llm := &mockLLMService{chatResponses: []string{"Plain answer"}}

	res, err := NewLLMAgents(llm, 5).Synthesize(context.Background(), SynthesisRequest{Query: "q"})

	require.NoError(t, err)
	assert.Equal(t, "Plain answer", res.DraftAnswer)
	assert.Equal(t, "Plain answer", res.RawText)
}
