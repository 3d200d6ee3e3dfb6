package domain

import "time"

// RunRecord is the persisted audit entry for one answered question.
type RunRecord struct {
	ID             string             `json:"id"`
	Query          string             `json:"query"`
	FinalAnswer    string             `json:"final_answer"`
	Verdict        Verdict            `json:"verdict"`
	Attempts       int                `json:"attempts"`
	EvidenceCount  int                `json:"evidence_count"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Runs           []OrchestrationRun `json:"runs,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewRunRecord builds an audit entry from a finished orchestration.
func NewRunRecord(r *OrchestrationResult, at time.Time) RunRecord {
	return RunRecord{
		ID:             r.ID,
		Query:          r.Query,
		FinalAnswer:    r.FinalAnswer,
		Verdict:        r.Verdict,
		Attempts:       r.Attempts,
		EvidenceCount:  len(r.Evidence),
		ElapsedSeconds: r.ElapsedSeconds,
		Runs:           r.Runs,
		CreatedAt:      at,
	}
}
