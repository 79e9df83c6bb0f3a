package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/index"
	"github.com/poiesic/vecload/ingestion"
	"github.com/poiesic/vecload/record"
	"github.com/poiesic/vecload/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejection(line int, reason core.RejectReason) ingestion.Rejection {
	return ingestion.Rejection{
		Line:   line,
		Raw:    fmt.Sprintf("line %d", line),
		Reason: reason,
		Err:    errors.New(reason.String()),
	}
}

func TestJournal_SkipsSilentRejections(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	report := &core.RunReport{RunID: 7}

	journal := cat.Journal(report.RunID)
	journal.Rejected(rejection(5, core.RejectMalformedVector))
	journal.Rejected(rejection(2, core.RejectDimensionMismatch))
	journal.Rejected(rejection(1, core.RejectMissingField))
	journal.Finished(report)
	require.NoError(t, journal.Err())

	lines, err := cat.Rejections(ctx, report.RunID, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Line)
	assert.Equal(t, core.RejectMissingField, lines[0].Reason)
	assert.Equal(t, "missing_field", lines[0].Err)
	assert.Equal(t, 5, lines[1].Line)
	assert.Equal(t, "line 5", lines[1].Raw)

	got, err := cat.Run(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
}

func TestJournal_Limit(t *testing.T) {
	cat := newTestCatalog(t)
	journal := cat.JournalWithLimit(1, 3)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			journal.Rejected(rejection(i, core.RejectMalformedVector))
		}()
	}
	wg.Wait()
	journal.Finished(&core.RunReport{RunID: 1})
	require.NoError(t, journal.Err())

	journaled, dropped := journal.Journaled()
	assert.Equal(t, 3, journaled)
	assert.Equal(t, 7, dropped)

	lines, err := cat.Rejections(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	limited, err := cat.Rejections(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestJournal_TruncatesRawLine(t *testing.T) {
	cat := newTestCatalog(t)
	journal := cat.Journal(1)

	r := rejection(0, core.RejectMalformedVector)
	r.Raw = strings.Repeat("x", maxRawBytes*2)
	journal.Rejected(r)
	journal.Finished(&core.RunReport{RunID: 1})

	lines, err := cat.Rejections(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Raw, maxRawBytes)
}

func TestJournal_RunsAreIsolated(t *testing.T) {
	cat := newTestCatalog(t)

	a := cat.Journal(1)
	a.Rejected(rejection(0, core.RejectMalformedVector))
	a.Finished(&core.RunReport{RunID: 1})

	b := cat.Journal(2)
	b.Rejected(rejection(0, core.RejectMissingField))
	b.Rejected(rejection(1, core.RejectMissingField))
	b.Finished(&core.RunReport{RunID: 2})

	lines, err := cat.Rejections(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	lines, err = cat.Rejections(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestJournal_WithPipeline(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	runID := core.IDFromContent("pipeline")

	input := blobstore.NewMemoryStore()
	input.Put("in.csv", []byte(strings.Join([]string{
		"a;b;c;d;[1,2]",
		"a;b;c;d;[1,2,3]",
		"a;b;c;d;{}",
		"a;b",
	}, "\n")))
	src, err := source.New(input, "in.csv")
	require.NoError(t, err)
	parser, err := record.NewParser(2)
	require.NoError(t, err)
	ix, err := index.New(core.IndexConfig{Dimensions: 2, Metric: core.MetricIP, Scalar: core.ScalarF32})
	require.NoError(t, err)

	journal := cat.Journal(runID)
	defer journal.Close()

	p, err := ingestion.NewPipeline(src, parser, ix,
		ingestion.WithRunInfo(ingestion.RunInfo{ID: runID, Input: "in.csv"}),
		ingestion.WithMonitor(journal),
		ingestion.WithPoolSize(2),
	)
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, journal.Err())

	stored, err := cat.Run(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, report.Inserted, stored.Inserted)
	assert.Equal(t, 1, stored.DimensionMismatch)
	assert.Equal(t, 1, stored.MalformedVectors)
	assert.Equal(t, 1, stored.MissingFields)

	lines, err := cat.Rejections(ctx, runID, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Line)
	assert.Equal(t, core.RejectMalformedVector, lines[0].Reason)
	assert.Equal(t, 3, lines[1].Line)
	assert.Equal(t, core.RejectMissingField, lines[1].Reason)
}
