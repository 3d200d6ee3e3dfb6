package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunsFileName is the audit log file under the data dir.
const RunsFileName = "runs.jsonl"

// maxLineSize bounds a single record; rounds carry full planner output.
const maxLineSize = 4 << 20

// RunStore appends one JSON record per line.
type RunStore struct {
	mu   sync.Mutex
	path string
}

// NewRunStore creates a run store writing to <dataDir>/runs.jsonl.
func NewRunStore(dataDir string) (*RunStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &RunStore{path: filepath.Join(dataDir, RunsFileName)}, nil
}

// SaveRun appends a record.
func (s *RunStore) SaveRun(ctx context.Context, run domain.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshalling run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}
	return nil
}

// GetRun finds the newest record with the ID.
func (s *RunStore) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	runs, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListRuns returns the newest records first. A non-positive limit returns
// every record.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	runs, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RunRecord, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, runs[i])
	}
	return out, nil
}

func (s *RunStore) readAll(ctx context.Context) ([]domain.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	var runs []domain.RunRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var run domain.RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &run); err != nil {
			return nil, fmt.Errorf("parsing run log: %w", err)
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	return runs, nil
}
