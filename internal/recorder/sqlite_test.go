package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"QuoteTables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RunRoundTrip(t *testing.T) {
	r := openTemp(t)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	run := &model.RunSummary{
		ID:        "run-1",
		StartedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Start:     start,
		End:       start.AddDate(0, 0, 7),
		Universes: []string{"dow", "manual"},
		Requested: 3,
		Fetched:   2,
		Skipped:   []model.Symbol{"CCC"},
		Retained:  []model.Symbol{"AAA", "BBB"},
		Length:    5,
		Output:    "out",
	}
	require.NoError(t, r.RecordRun(run))

	runs, err := r.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, run.Duration, got.Duration)
	assert.True(t, run.Start.Equal(got.Start))
	assert.True(t, run.End.Equal(got.End))
	assert.Equal(t, run.Universes, got.Universes)
	assert.Equal(t, run.Skipped, got.Skipped)
	assert.Nil(t, got.Dropped)
	assert.Equal(t, run.Retained, got.Retained)
	assert.Equal(t, 5, got.Length)
}

func TestSQLiteRecorder_ListRunsNewestFirst(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.RecordRun(&model.RunSummary{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Start:     base,
			End:       base,
		}))
	}

	runs, err := r.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestSQLiteRecorder_Observations(t *testing.T) {
	r := openTemp(t)
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordRun(&model.RunSummary{ID: "run-1", StartedAt: d, Start: d, End: d}))

	lt := model.LongTable{Rows: []model.Row{
		{Symbol: "AAA", Observation: model.Observation{Date: d, Open: 1, High: 2, Low: 0.5, Close: 1.5, AdjClose: 1.5, Volume: 10}},
		{Symbol: "BBB", Observation: model.Observation{Date: d, Open: 3, High: 4, Low: 2.5, Close: 3.5, AdjClose: 3.5, Volume: 20}},
	}}
	require.NoError(t, r.RecordObservations("run-1", lt))
	// re-recording the same rows replaces them
	require.NoError(t, r.RecordObservations("run-1", lt))

	n, err := r.CountObservations("run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&model.RunSummary{}))
	assert.NoError(t, r.RecordObservations("x", model.LongTable{}))
	runs, err := r.ListRuns(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
