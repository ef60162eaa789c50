package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sum := sampleSummary()
	require.NoError(t, store.RecordSummary(sum))
	require.NoError(t, store.RecordSeries(sum.RunID, sum.Series))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, sum.CreatedAt, runs[0].CreatedAt)
	assert.Equal(t, 2, runs[0].Departed)
	assert.Equal(t, 54.0, runs[0].GridEnergyKWh)

	n, err := store.SampleCount("run-1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLiteStoreReplacesRun(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sum := sampleSummary()
	require.NoError(t, store.RecordSummary(sum))
	require.NoError(t, store.RecordSeries(sum.RunID, sum.Series))
	sum.Departed = 3
	require.NoError(t, store.RecordSummary(sum))
	require.NoError(t, store.RecordSeries(sum.RunID, sum.Series[:1]))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Departed)
	n, err := store.SampleCount("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
