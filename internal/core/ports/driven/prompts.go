package driven

// PromptStore supplies the agents' system prompts so users can edit them
// without rebuilding. Callers fall back to the built-in text when Load
// fails.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates; the next Load reads storage again.
	Reload()
}

// Prompt names. Each is also the file stem under the prompts directory.
const (
	// PromptPlannerSystem instructs the planner how to gather evidence and
	// format its draft answer. The template expects a %d placeholder for top_k.
	PromptPlannerSystem = "planner_system"

	// PromptJudgeSystem instructs the judge to emit a strict JSON verdict.
	// This prompt has no format placeholders.
	PromptJudgeSystem = "judge_system"

	// PromptSynthesizerSystem instructs the synthesizer to polish a draft.
	// This prompt has no format placeholders.
	PromptSynthesizerSystem = "synthesizer_system"

	// PromptSummarise creates summaries of document content.
	// The prompt template expects %d (max length) and %s (content) placeholders.
	PromptSummarise = "summarise"
)

// PromptStoreAware is implemented by services that accept a PromptStore
// after construction. Without one they use the built-in prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
