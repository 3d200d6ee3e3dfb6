package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure LLMAgents implements all three agent roles.
var (
	_ Planner                 = (*LLMAgents)(nil)
	_ Judge                   = (*LLMAgents)(nil)
	_ Synthesizer             = (*LLMAgents)(nil)
	_ driven.PromptStoreAware = (*LLMAgents)(nil)
)

// Generation settings per role.
const (
	plannerTemperature     = 0.2
	judgeTemperature       = 0.0
	synthesizerTemperature = 0.3

	plannerMaxTokens     = 2048
	judgeMaxTokens       = 1024
	synthesizerMaxTokens = 2048

	// maxSnippetChars bounds each snippet handed to the synthesizer, in runes.
	maxSnippetChars = 20000
	truncatedSuffix = "... [TRUNCATED]"
)

// LLMAgents plays the planner, judge and synthesizer roles over one LLM.
type LLMAgents struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	topK        int
}

// NewLLMAgents creates the agents. topK is the search size hinted to the planner.
func NewLLMAgents(llm driven.LLMService, topK int) *LLMAgents {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &LLMAgents{llm: llm, topK: topK}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the agents use the built-in prompts.
func (a *LLMAgents) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Plan asks the model for a draft or for more retrieval. The draft is left
// empty; the orchestrator derives it from the raw text.
func (a *LLMAgents) Plan(ctx context.Context, req PlanRequest) (*domain.PlannerResult, error) {
	system := a.loadPrompt(driven.PromptPlannerSystem, domain.DefaultPlannerPrompt)
	if strings.Contains(system, "%d") {
		system = fmt.Sprintf(system, a.topK)
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: BuildPlannerPrompt(req)},
	}
	resp, err := a.llm.ChatWithTools(ctx, messages, ToolSpecs(), driven.ChatOptions{
		MaxTokens:   plannerMaxTokens,
		Temperature: plannerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	result := &domain.PlannerResult{
		RawText:   resp.Text,
		ToolCalls: []domain.ToolCall{},
		Evidence:  []domain.Evidence{},
	}
	if req.IsLastAttempt {
		return result, nil
	}
	for _, fc := range resp.ToolCalls {
		if fc.Name == "" {
			continue
		}
		result.ToolCalls = append(result.ToolCalls, domain.ToolCall{Name: fc.Name, Arguments: fc.Arguments})
	}
	return result, nil
}

// BuildPlannerPrompt renders the user turn of a planning round.
func BuildPlannerPrompt(req PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", req.Query)

	if req.LastJudge != nil && req.LastJudge.Verdict == domain.VerdictRetry {
		b.WriteString("\nCRITIQUE FROM PREVIOUS ATTEMPT:\n")
		fmt.Fprintf(&b, "The Judge rejected your previous answer. Reason:\n%s\n", req.LastJudge.Explanation)
		b.WriteString("You must address this critique. If you need more information, call tools.\n")
	}

	if len(req.Evidence) > 0 {
		b.WriteString("\nEvidence collected so far:\n")
		writeEvidence(&b, req.Evidence)
	}

	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("1. Review the evidence above.\n")
	if req.IsLastAttempt {
		b.WriteString("2. THIS IS YOUR LAST ATTEMPT. DO NOT CALL TOOLS. You MUST synthesize the best possible answer from the evidence provided.\n")
		b.WriteString("3. If evidence is missing, state what is known and what is missing, but DO NOT call tools.\n")
		b.WriteString("4. Write your final answer inside the DRAFT_ANSWER block.\n")
	} else {
		b.WriteString("2. If the evidence is sufficient to FULLY answer the question, SYNTHESIZE the final answer inside the DRAFT_ANSWER block.\n")
		b.WriteString("3. If you need more info, call tools. DO NOT generate a DRAFT_ANSWER if you are calling tools.\n")
		b.WriteString("4. If you are just stating what you will do, DO NOT put it in DRAFT_ANSWER. Just call the tools.\n")
	}
	return b.String()
}

// Judge asks the model for a verdict on the round's draft.
func (a *LLMAgents) Judge(ctx context.Context, _ string, result *domain.PlannerResult) (*domain.JudgeResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft Answer: %s\n", result.DraftAnswer)
	b.WriteString("Evidence:\n")
	writeEvidence(&b, result.Evidence)

	messages := []driven.ChatMessage{
		{Role: "system", Content: a.loadPrompt(driven.PromptJudgeSystem, domain.DefaultJudgePrompt)},
		{Role: "user", Content: b.String()},
	}
	text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   judgeMaxTokens,
		Temperature: judgeTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		text = "{}"
	}
	return ParseJudgeOutput(text), nil
}

type judgeOutput struct {
	Verdict          string   `json:"verdict"`
	Critique         string   `json:"critique"`
	Missing          string   `json:"missing"`
	SuggestedQueries []string `json:"suggested_queries"`
	TargetDocs       []string `json:"target_docs"`
}

// ParseJudgeOutput decodes the judge's JSON verdict, tolerating markdown
// fences. Unparseable output becomes a retry that does not ask for more
// evidence.
func ParseJudgeOutput(text string) *domain.JudgeResult {
	body := text
	switch {
	case strings.Contains(body, "```json"):
		body = strings.SplitN(strings.SplitN(body, "```json", 2)[1], "```", 2)[0]
	case strings.Contains(body, "```"):
		body = strings.SplitN(strings.SplitN(body, "```", 2)[1], "```", 2)[0]
	}
	body = strings.TrimSpace(body)

	var out judgeOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		logger.Debug("Judge output is not JSON: %v", err)
		return &domain.JudgeResult{
			Verdict:     domain.VerdictRetry,
			Explanation: "Failed to parse judge output: " + body,
		}
	}

	verdict := domain.VerdictRetry
	if out.Verdict == string(domain.VerdictAccept) {
		verdict = domain.VerdictAccept
	}
	return &domain.JudgeResult{
		Verdict:              verdict,
		Explanation:          out.Critique + "\n" + out.Missing,
		RequiresMoreEvidence: verdict == domain.VerdictRetry,
		Critique:             out.Critique,
		Missing:              out.Missing,
		SuggestedQueries:     out.SuggestedQueries,
		TargetDocs:           out.TargetDocs,
	}
}

// Synthesize polishes the draft against the supplied evidence.
func (a *LLMAgents) Synthesize(ctx context.Context, req SynthesisRequest) (*domain.SynthesizerResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "USER_QUESTION: %s\n", req.Query)
	fmt.Fprintf(&b, "LATEST_DRAFT_ANSWER: %s\n", req.DraftAnswer)
	b.WriteString("\nCONTEXT_SNIPPETS:\n")

	safe := make([]domain.Evidence, len(req.Evidence))
	for i, ev := range req.Evidence {
		if r := []rune(ev.Snippet); len(r) > maxSnippetChars {
			ev.Snippet = string(r[:maxSnippetChars]) + truncatedSuffix
		}
		safe[i] = ev
	}
	writeEvidence(&b, safe)
	logger.Debug("Synthesizer using %d context chunks", len(safe))

	messages := []driven.ChatMessage{
		{Role: "system", Content: a.loadPrompt(driven.PromptSynthesizerSystem, domain.DefaultSynthesizerPrompt)},
		{Role: "user", Content: b.String()},
	}
	text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   synthesizerMaxTokens,
		Temperature: synthesizerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizer: %w", err)
	}

	draft := text
	if block, ok := draftBlock(text); ok {
		draft = block
	}
	return &domain.SynthesizerResult{
		RawText:     text,
		DraftAnswer: draft,
		Evidence:    req.Evidence,
	}, nil
}

// ExtractDraftAnswer pulls the draft out of agent output. It prefers the
// marker block, then a "DRAFT_ANSWER: ..." line, then the whole text.
func ExtractDraftAnswer(text string) string {
	if block, ok := draftBlock(text); ok {
		return block
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "DRAFT_ANSWER") {
			continue
		}
		if _, after, found := strings.Cut(line, ":"); found {
			return strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(text)
}

func draftBlock(text string) (string, bool) {
	_, rest, ok := strings.Cut(text, domain.DraftAnswerStart)
	if !ok {
		return "", false
	}
	body, _, ok := strings.Cut(rest, domain.DraftAnswerEnd)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// writeEvidence renders one "- {json}" line per item.
func writeEvidence(b *strings.Builder, evidence []domain.Evidence) {
	for _, ev := range evidence {
		data, err := json.Marshal(ev)
		if err != nil {
			fmt.Fprintf(b, "- %s: %s\n", ev.DocID, ev.Snippet)
			continue
		}
		fmt.Fprintf(b, "- %s\n", data)
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (a *LLMAgents) loadPrompt(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}
	prompt, err := a.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
