package domain

import "encoding/json"

// EventType names a progress event kind.
type EventType string

// Available event types, in the order a caller typically observes them.
const (
	EventToolCall    EventType = "tool_call"
	EventToolResult  EventType = "tool_result"
	EventJudgeResult EventType = "judge_result"
	EventChunk       EventType = "chunk"
	EventComplete    EventType = "complete"
	EventError       EventType = "error"
)

// Citation is a source of the final answer.
type Citation struct {
	Title      string `json:"title"`
	ChunksUsed int    `json:"chunks_used"`
	Snippet    string `json:"snippet"`
}

// RetrievalInfo summarises how much evidence supported an answer.
type RetrievalInfo struct {
	TotalChunksUsed int `json:"total_chunks_used"`
}

// Event is a progress notification. Only the fields relevant to Type are
// set; MarshalJSON emits exactly those.
type Event struct {
	Type EventType

	// tool_call and tool_result
	Tool   string
	Args   map[string]any
	Result map[string]any

	// judge_result
	Judge *JudgeResult

	// chunk
	Text string

	// complete
	Citations     []Citation
	RetrievalInfo *RetrievalInfo

	// error
	Error string
}

// ToolCallEvent reports a tool invocation before it runs.
func ToolCallEvent(tool string, args map[string]any) Event {
	return Event{Type: EventToolCall, Tool: tool, Args: args}
}

// ToolResultEvent reports a tool invocation after it ran.
func ToolResultEvent(tool string, result map[string]any) Event {
	return Event{Type: EventToolResult, Tool: tool, Result: result}
}

// JudgeResultEvent reports a judge verdict.
func JudgeResultEvent(j JudgeResult) Event {
	return Event{Type: EventJudgeResult, Judge: &j}
}

// ChunkEvent carries a piece of the final answer.
func ChunkEvent(text string) Event {
	return Event{Type: EventChunk, Text: text}
}

// CompleteEvent ends a successful stream.
func CompleteEvent(citations []Citation, info RetrievalInfo) Event {
	if citations == nil {
		citations = []Citation{}
	}
	return Event{Type: EventComplete, Citations: citations, RetrievalInfo: &info}
}

// ErrorEvent ends a failed stream.
func ErrorEvent(err error) Event {
	return Event{Type: EventError, Error: err.Error()}
}

// MarshalJSON renders the event in its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": e.Type}
	switch e.Type {
	case EventToolCall:
		out["tool"] = e.Tool
		out["args"] = nonNilMap(e.Args)
	case EventToolResult:
		out["tool"] = e.Tool
		out["result"] = nonNilMap(e.Result)
	case EventJudgeResult:
		if e.Judge != nil {
			out["verdict"] = e.Judge.Verdict
			out["explanation"] = e.Judge.Explanation
			out["requires_more_evidence"] = e.Judge.RequiresMoreEvidence
		}
	case EventChunk:
		out["text"] = e.Text
	case EventComplete:
		citations := e.Citations
		if citations == nil {
			citations = []Citation{}
		}
		out["citations"] = citations
		if e.RetrievalInfo != nil {
			out["retrieval_info"] = e.RetrievalInfo
		}
	case EventError:
		out["error"] = e.Error
	}
	return json.Marshal(out)
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
