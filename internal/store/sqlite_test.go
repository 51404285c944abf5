package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazamatic/analytics-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunRunning, run.Status)

	result := &model.RunResult{
		DatasetsExtracted: 7,
		DatasetsCleaned:   7,
		TablesDerived:     5,
		RowsDropped:       2,
		DurationMS:        1234,
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunSucceeded, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunSucceeded, got.Status)
	require.NotNil(t, got.FinishedAt)
	require.NotNil(t, got.Result)
	assert.Equal(t, 5, got.Result.TablesDerived)
	assert.Equal(t, int64(1234), got.Result.DurationMS)
}

func TestSQLiteCompleteRunWithoutResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunFailed, nil))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, got.Status)
	assert.Nil(t, got.Result)
}

func TestSQLiteCompleteRunNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.CompleteRun(context.Background(), "missing", model.RunSucceeded, nil)
	require.Error(t, err)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, first.ID, model.RunSucceeded, nil))

	_, err = s.CreateRun(ctx)
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	succeeded, err := s.ListRuns(ctx, RunFilter{Status: model.RunSucceeded})
	require.NoError(t, err)
	require.Len(t, succeeded, 1)
	assert.Equal(t, first.ID, succeeded[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
