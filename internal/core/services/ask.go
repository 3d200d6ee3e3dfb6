package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driving.AskService = (*AskService)(nil)
	_ driving.RunService = (*RunService)(nil)
)

// Agents bundles the three roles of the answer loop.
type Agents struct {
	Planner     Planner
	Judge       Judge
	Synthesizer Synthesizer
}

// AskConfig tunes every question answered by an AskService.
type AskConfig struct {
	MaxAttempts        int
	SynthEvidenceLimit int
	TopK               int
	Weights            domain.FusionWeights
}

// AskService answers questions over the document collection.
type AskService struct {
	docs   driving.DocumentService
	agents Agents
	runs   driven.RunStore
	cfg    AskConfig
	now    func() time.Time
}

// NewAskService creates an ask service. runs may be nil to skip auditing.
func NewAskService(docs driving.DocumentService, agents Agents, runs driven.RunStore, cfg AskConfig) *AskService {
	if cfg.Weights == (domain.FusionWeights{}) {
		cfg.Weights = domain.DefaultFusionWeights()
	}
	return &AskService{
		docs:   docs,
		agents: agents,
		runs:   runs,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Ask runs the answer loop. Progress is reported to opts.Sink.
func (s *AskService) Ask(ctx context.Context, question string, opts driving.AskOptions) (*domain.OrchestrationResult, error) {
	if question == "" {
		return nil, fmt.Errorf("ask: empty question: %w", domain.ErrInvalidInput)
	}
	if s.agents.Planner == nil || s.agents.Judge == nil {
		return nil, fmt.Errorf("ask: %w", domain.ErrLLMUnavailable)
	}

	sink := opts.Sink
	if sink == nil {
		sink = DiscardSink{}
	}
	attempts := s.cfg.MaxAttempts
	if opts.MaxAttempts > 0 {
		attempts = opts.MaxAttempts
	}

	tools := NewToolExecutor(s.docs, sink, WithTopK(s.cfg.TopK), WithFusionWeights(s.cfg.Weights))
	orch, err := NewOrchestrator(OrchestratorConfig{
		Planner:            s.agents.Planner,
		Judge:              s.agents.Judge,
		Synthesizer:        s.agents.Synthesizer,
		Tools:              tools,
		MaxAttempts:        attempts,
		SynthEvidenceLimit: s.cfg.SynthEvidenceLimit,
		OnJudgeResult: func(j domain.JudgeResult) {
			sink.Emit(domain.JudgeResultEvent(j))
		},
		RunID: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	result, err := orch.Orchestrate(ctx, question)
	if result != nil {
		s.record(ctx, result)
	}
	return result, err
}

func (s *AskService) record(ctx context.Context, result *domain.OrchestrationResult) {
	if s.runs == nil {
		return
	}
	// The caller's ctx may already be cancelled; the audit write still happens.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.runs.SaveRun(saveCtx, domain.NewRunRecord(result, s.now())); err != nil {
		logger.Warn("Failed to save run %s: %v", result.ID, err)
	}
}

// Citations lists the sources behind an answer. The synthesizer's evidence
// is preferred; otherwise every round's evidence is used. Only evidence with
// a document id is cited.
func Citations(result *domain.OrchestrationResult) ([]domain.Citation, domain.RetrievalInfo) {
	citations := []domain.Citation{}
	add := func(ev domain.Evidence) {
		if ev.DocID == "" {
			return
		}
		citations = append(citations, domain.Citation{Title: ev.DocID, ChunksUsed: 1, Snippet: ev.Snippet})
	}

	if result != nil && len(result.SynthesizerEvidence) > 0 {
		for _, ev := range result.SynthesizerEvidence {
			add(ev)
		}
	} else if result != nil {
		for _, run := range result.Runs {
			for _, ev := range run.PlannerResult.Evidence {
				add(ev)
			}
		}
	}
	return citations, domain.RetrievalInfo{TotalChunksUsed: len(citations)}
}

// RunService reads the audit log.
type RunService struct {
	store driven.RunStore
}

// NewRunService creates a run service. A nil store reports ErrRunStoreUnavailable.
func NewRunService(store driven.RunStore) *RunService {
	return &RunService{store: store}
}

// Recent returns the newest runs first.
func (s *RunService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.store == nil {
		return nil, domain.ErrRunStoreUnavailable
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListRuns(ctx, limit)
}

// Get retrieves a run by id.
func (s *RunService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if s.store == nil {
		return nil, domain.ErrRunStoreUnavailable
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetRun(ctx, id)
}
