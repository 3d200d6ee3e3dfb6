package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestRunsCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "runs")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestRunsCmd_ListsNewestFirst(t *testing.T) {
	ts := setupTestServices(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, ts.runs.SaveRun(context.Background(), domain.RunRecord{
			ID:        fmt.Sprintf("run-%d", i),
			Query:     fmt.Sprintf("question %d", i),
			Verdict:   domain.VerdictAccept,
			Attempts:  i + 1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	out, err := execute(t, "runs", "-n", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "run-1")
	assert.NotContains(t, out, "run-0")
	assert.Contains(t, out, "Question: question 2")
	assert.Contains(t, out, "accept after 3 attempt(s)")
	assert.Contains(t, out, "Total: 2 runs")
}

func TestRunsCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	runService = nil

	_, err := execute(t, "runs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run service not configured")
}
