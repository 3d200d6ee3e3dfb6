package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Default loop limits.
const (
	DefaultOrchestratorAttempts = 3
	DefaultSynthEvidenceLimit   = 5
)

// PlanRequest is everything the planner sees in one round.
type PlanRequest struct {
	Query             string
	Evidence          []domain.Evidence
	LastJudge         *domain.JudgeResult
	IsLastAttempt     bool
	RemainingAttempts int
}

// SynthesisRequest is the input of the synthesizer.
type SynthesisRequest struct {
	Query       string
	DraftAnswer string
	Evidence    []domain.Evidence
}

// Planner drafts an answer and requests retrieval.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (*domain.PlannerResult, error)
}

// Judge evaluates a planner result.
type Judge interface {
	Judge(ctx context.Context, query string, result *domain.PlannerResult) (*domain.JudgeResult, error)
}

// Synthesizer polishes a draft against the evidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*domain.SynthesizerResult, error)
}

// EvidenceCollector executes tool calls.
type EvidenceCollector interface {
	Execute(ctx context.Context, calls []domain.ToolCall) []domain.Evidence
}

// OrchestratorConfig wires an Orchestrator. Planner and Judge are required;
// Synthesizer and Tools are optional.
type OrchestratorConfig struct {
	Planner     Planner
	Judge       Judge
	Synthesizer Synthesizer
	Tools       EvidenceCollector

	// MaxAttempts bounds the number of rounds. Defaults to 3.
	MaxAttempts int

	// SynthEvidenceLimit caps the evidence handed to the synthesizer. Defaults to 5.
	SynthEvidenceLimit int

	// OnJudgeResult is called after every verdict.
	OnJudgeResult func(domain.JudgeResult)

	// RunID is copied into the result.
	RunID string
}

// Orchestrator runs the planner, tools, synthesizer and judge in rounds until
// the judge accepts or the attempt budget is spent.
type Orchestrator struct {
	cfg OrchestratorConfig
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Planner == nil {
		return nil, fmt.Errorf("orchestrator: planner is required: %w", domain.ErrInvalidInput)
	}
	if cfg.Judge == nil {
		return nil, fmt.Errorf("orchestrator: judge is required: %w", domain.ErrInvalidInput)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultOrchestratorAttempts
	}
	if cfg.SynthEvidenceLimit <= 0 {
		cfg.SynthEvidenceLimit = DefaultSynthEvidenceLimit
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Orchestrate answers query. The final answer is the last round's draft
// whether or not the judge accepted it. Cancellation is checked after every
// blocking step: the round in flight is dropped and, if at least one round
// completed, the partial result is returned alongside ctx.Err().
func (o *Orchestrator) Orchestrate(ctx context.Context, query string) (*domain.OrchestrationResult, error) {
	start := time.Now()
	n := o.cfg.MaxAttempts

	var (
		evidence  []domain.Evidence
		runs      []domain.OrchestrationRun
		lastJudge *domain.JudgeResult
		synthEv   []domain.Evidence
	)

	finish := func() *domain.OrchestrationResult {
		res := &domain.OrchestrationResult{
			ID:                  o.cfg.RunID,
			Query:               query,
			FinalAnswer:         domain.NoAnswer,
			Verdict:             domain.VerdictNoRuns,
			Attempts:            len(runs),
			Runs:                runs,
			ElapsedSeconds:      time.Since(start).Seconds(),
			Evidence:            evidence,
			SynthesizerEvidence: synthEv,
		}
		if len(runs) > 0 {
			last := runs[len(runs)-1]
			res.FinalAnswer = last.PlannerResult.DraftAnswer
			res.Verdict = last.JudgeResult.Verdict
		}
		if res.Runs == nil {
			res.Runs = []domain.OrchestrationRun{}
		}
		if res.Evidence == nil {
			res.Evidence = []domain.Evidence{}
		}
		return res
	}

	// abandon drops the round in flight. Completed rounds are returned with
	// ctx.Err(); a late result from the cancelled round is never recorded.
	abandon := func(err error) (*domain.OrchestrationResult, error) {
		if len(runs) == 0 {
			return nil, err
		}
		return finish(), err
	}

	for attempt := 1; attempt <= n; attempt++ {
		if err := ctx.Err(); err != nil {
			return abandon(err)
		}

		logger.Section(fmt.Sprintf("Attempt %d/%d", attempt, n))
		isLast := attempt == n

		plan, err := o.cfg.Planner.Plan(ctx, PlanRequest{
			Query:             query,
			Evidence:          evidence,
			LastJudge:         lastJudge,
			IsLastAttempt:     isLast,
			RemainingAttempts: n - attempt,
		})
		if cerr := ctx.Err(); cerr != nil {
			return abandon(cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("orchestrate: plan attempt %d: %w: %w", attempt, domain.ErrLLMUnavailable, err)
		}
		round := *plan
		round.Evidence = append([]domain.Evidence(nil), plan.Evidence...)
		if isLast && len(round.ToolCalls) > 0 {
			logger.Debug("Ignoring %d tool calls on last attempt", len(round.ToolCalls))
			round.ToolCalls = nil
		}
		if round.DraftAnswer == "" {
			round.DraftAnswer = ExtractDraftAnswer(round.RawText)
		}
		logger.Debug("Planner: %d tool calls, draft %q", len(round.ToolCalls), preview(round.DraftAnswer, 200))

		// Evidence gathered by this round is committed only once the round
		// completes.
		gathered := evidence
		if !isLast && len(round.ToolCalls) > 0 && o.cfg.Tools != nil {
			found := o.cfg.Tools.Execute(ctx, round.ToolCalls)
			round.Evidence = append(round.Evidence, found...)
			gathered = append(slices.Clip(evidence), found...)
			logger.Debug("Collected %d evidence (%d total)", len(found), len(gathered))
		}
		if cerr := ctx.Err(); cerr != nil {
			return abandon(cerr)
		}

		roundSynthEv := synthEv
		if o.cfg.Synthesizer != nil {
			roundSynthEv = selectSynthEvidence(gathered, o.cfg.SynthEvidenceLimit)
			synth, err := o.cfg.Synthesizer.Synthesize(ctx, SynthesisRequest{
				Query:       query,
				DraftAnswer: round.DraftAnswer,
				Evidence:    roundSynthEv,
			})
			if cerr := ctx.Err(); cerr != nil {
				return abandon(cerr)
			}
			if err != nil {
				return nil, fmt.Errorf("orchestrate: synthesize attempt %d: %w: %w", attempt, domain.ErrLLMUnavailable, err)
			}
			round.DraftAnswer = synth.DraftAnswer
		}

		// The judge weighs the draft against everything gathered so far;
		// round.Evidence stays the per-round audit record.
		judged := round
		judged.Evidence = append(append([]domain.Evidence(nil), gathered...), plan.Evidence...)
		verdict, err := o.cfg.Judge.Judge(ctx, query, &judged)
		if cerr := ctx.Err(); cerr != nil {
			return abandon(cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("orchestrate: judge attempt %d: %w: %w", attempt, domain.ErrLLMUnavailable, err)
		}

		evidence = gathered
		synthEv = roundSynthEv
		lastJudge = verdict
		logger.Info("Judge verdict: %s (more evidence: %t)", verdict.Verdict, verdict.RequiresMoreEvidence)
		if o.cfg.OnJudgeResult != nil {
			o.cfg.OnJudgeResult(*verdict)
		}

		runs = append(runs, domain.OrchestrationRun{
			PlannerResult: round,
			JudgeResult:   *verdict,
			StepIndex:     attempt,
		})

		if verdict.Accepted() {
			break
		}
	}

	return finish(), nil
}

// selectSynthEvidence keeps the newest limit records.
func selectSynthEvidence(ev []domain.Evidence, limit int) []domain.Evidence {
	if limit > 0 && len(ev) > limit {
		ev = ev[len(ev)-limit:]
	}
	return append([]domain.Evidence(nil), ev...)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
