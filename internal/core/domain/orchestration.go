package domain

// Verdict is the judge's decision on a draft answer.
type Verdict string

// Available verdicts.
const (
	// VerdictAccept ends the loop when no more evidence is requested.
	VerdictAccept Verdict = "accept"

	// VerdictRetry asks the planner for another round.
	VerdictRetry Verdict = "retry"

	// VerdictNoRuns is the sentinel returned when the loop completed no rounds.
	VerdictNoRuns Verdict = "no_runs"
)

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// NoAnswer is the final answer reported when no round completed.
const NoAnswer = "No answer generated."

// Evidence is one retrieved record. Evidence accumulates in call order for
// the duration of a single orchestration and is never deduplicated.
type Evidence struct {
	// DocID is the document the snippet came from.
	DocID string `json:"doc_id,omitempty"`

	// Snippet is the retrieved text.
	Snippet string `json:"snippet,omitempty"`

	// SearchType is set by hybrid tools.
	SearchType SearchType `json:"search_type,omitempty"`

	// Scores holds the ranking scores behind the snippet, when known.
	Scores []float64 `json:"scores,omitempty"`

	// Documents is set by list_documents.
	Documents []DocumentRef `json:"documents,omitempty"`
}

// HasDocument reports whether the evidence points at a document.
func (e Evidence) HasDocument() bool {
	return e.DocID != ""
}

// ToolCall is a retrieval request produced by the planner.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// PlannerResult is the output of one planning step.
type PlannerResult struct {
	RawText     string     `json:"raw_text"`
	DraftAnswer string     `json:"draft_answer"`
	ToolCalls   []ToolCall `json:"tool_calls"`
	Evidence    []Evidence `json:"evidence"`
}

// JudgeResult is the evaluation of a draft answer.
type JudgeResult struct {
	Verdict              Verdict  `json:"verdict"`
	Explanation          string   `json:"explanation"`
	RequiresMoreEvidence bool     `json:"requires_more_evidence"`
	Critique             string   `json:"critique,omitempty"`
	Missing              string   `json:"missing,omitempty"`
	SuggestedQueries     []string `json:"suggested_queries,omitempty"`
	TargetDocs           []string `json:"target_docs,omitempty"`
}

// Accepted reports whether the loop may stop on this verdict.
func (j JudgeResult) Accepted() bool {
	return j.Verdict == VerdictAccept && !j.RequiresMoreEvidence
}

// SynthesizerResult is the polished draft for a round.
type SynthesizerResult struct {
	RawText     string     `json:"raw_text"`
	DraftAnswer string     `json:"draft_answer"`
	Evidence    []Evidence `json:"evidence"`
}

// OrchestrationRun records one completed round.
type OrchestrationRun struct {
	PlannerResult PlannerResult `json:"planner_result"`
	JudgeResult   JudgeResult   `json:"judge_result"`
	StepIndex     int           `json:"step_index"`
}

// OrchestrationResult is the terminal output of the answer loop.
// FinalAnswer is always the last round's draft, accepted or not.
type OrchestrationResult struct {
	ID             string             `json:"id"`
	Query          string             `json:"query"`
	FinalAnswer    string             `json:"final_answer"`
	Verdict        Verdict            `json:"verdict"`
	Attempts       int                `json:"attempts"`
	Runs           []OrchestrationRun `json:"runs"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`

	// Evidence is everything collected across rounds, in order.
	Evidence []Evidence `json:"evidence"`

	// SynthesizerEvidence is the truncated context the last synthesis saw.
	SynthesizerEvidence []Evidence `json:"synthesizer_evidence,omitempty"`
}
