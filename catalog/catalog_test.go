package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/vecload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open("", true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestRecordRun_Run(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	report := sampleReport()

	require.NoError(t, cat.RecordRun(ctx, report))

	got, err := cat.Run(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestRecordRun_Replaces(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	report := sampleReport()

	require.NoError(t, cat.RecordRun(ctx, report))
	report.SaveError = "retry failed"
	require.NoError(t, cat.RecordRun(ctx, report))

	got, err := cat.Run(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, "retry failed", got.SaveError)

	all, err := cat.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRun_NotFound(t *testing.T) {
	cat := newTestCatalog(t)

	_, err := cat.Run(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRuns_NewestFirst(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, cat.RecordRun(ctx, &core.RunReport{
			RunID:     core.ID(100 - i),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := cat.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	for i := 1; i < len(runs); i++ {
		assert.True(t, runs[i-1].StartedAt.After(runs[i].StartedAt))
	}
	assert.Equal(t, core.ID(96), runs[0].RunID)

	limited, err := cat.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, runs[:2], limited)
}

func TestRuns_Empty(t *testing.T) {
	cat := newTestCatalog(t)

	runs, err := cat.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordRun_ContextCancelled(t *testing.T) {
	cat := newTestCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cat.RecordRun(ctx, sampleReport()), context.Canceled)
}

func TestDeleteRun(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	report := sampleReport()
	require.NoError(t, cat.RecordRun(ctx, report))

	journal := cat.Journal(report.RunID)
	journal.Rejected(rejection(3, core.RejectMissingField))
	journal.Finished(report)
	require.NoError(t, journal.Err())

	require.NoError(t, cat.DeleteRun(ctx, report.RunID))

	_, err := cat.Run(ctx, report.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	lines, err := cat.Rejections(ctx, report.RunID, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
