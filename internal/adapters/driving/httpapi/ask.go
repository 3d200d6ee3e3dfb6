package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

const (
	// answerChunkSize is the number of characters per chunk event.
	answerChunkSize = 50

	// askEventBuffer holds progress events while the writer catches up.
	askEventBuffer = 256
)

type askRequest struct {
	Question    string `json:"question"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
}

type askOutcome struct {
	result *domain.OrchestrationResult
	err    error
}

// handleAsk streams the answer loop as NDJSON: progress events as they
// happen, then the answer in chunks, then complete or error.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ask == nil {
		writeError(w, http.StatusNotImplemented, "question answering is not configured")
		return
	}

	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Missing field: question")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	stream := newEventStream(w)
	sink := services.NewChannelSink(askEventBuffer)
	done := make(chan askOutcome, 1)

	go func() {
		result, err := s.ports.Ask.Ask(r.Context(), req.Question, driving.AskOptions{
			MaxAttempts: req.MaxAttempts,
			Sink:        sink,
		})
		sink.Close()
		done <- askOutcome{result: result, err: err}
	}()

	for ev := range sink.Events() {
		stream.send(ev)
	}

	out := <-done
	if out.err != nil {
		logger.Warn("Ask failed: %v", out.err)
		stream.send(domain.ErrorEvent(out.err))
		return
	}

	for _, text := range splitRunes(out.result.FinalAnswer, answerChunkSize) {
		stream.send(domain.ChunkEvent(text))
	}
	citations, info := services.Citations(out.result)
	stream.send(domain.CompleteEvent(citations, info))
}

// eventStream writes one JSON event per line and flushes after each.
// Write errors mean the client went away; later sends are dropped.
type eventStream struct {
	enc    *json.Encoder
	rc     *http.ResponseController
	broken bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	return &eventStream{enc: json.NewEncoder(w), rc: http.NewResponseController(w)}
}

func (e *eventStream) send(ev domain.Event) {
	if e.broken {
		return
	}
	if err := e.enc.Encode(ev); err != nil {
		logger.Debug("Event stream closed: %v", err)
		e.broken = true
		return
	}
	_ = e.rc.Flush()
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.ports.Runs == nil {
		writeErr(w, domain.ErrRunStoreUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.ports.Runs.Recent(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	runs = orEmpty(runs)
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.ports.Runs == nil {
		writeErr(w, domain.ErrRunStoreUnavailable)
		return
	}

	run, err := s.ports.Runs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
