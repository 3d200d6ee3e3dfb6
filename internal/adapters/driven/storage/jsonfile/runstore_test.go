package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestRunStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRunStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	empty, err := store.ListRuns(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := range 3 {
		require.NoError(t, store.SaveRun(ctx, domain.RunRecord{
			ID:        fmt.Sprintf("run-%d", i),
			Query:     "q",
			Verdict:   domain.VerdictAccept,
			Attempts:  i + 1,
			CreatedAt: time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
		}))
	}
	assert.FileExists(t, filepath.Join(dir, RunsFileName))

	recent, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-2", recent[0].ID)
	assert.Equal(t, "run-1", recent[1].ID)

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := store.GetRun(ctx, "run-0")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, domain.VerdictAccept, got.Verdict)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_CorruptLog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RunsFileName), []byte("not json\n"), 0o600))
	store, err := NewRunStore(dir)
	require.NoError(t, err)

	_, err = store.ListRuns(context.Background(), 1)

	assert.Error(t, err)
}
