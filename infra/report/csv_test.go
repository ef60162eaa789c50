package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

func TestCSVSinkWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewCSVSink(dir, 0)
	require.NoError(t, err)
	sum := sampleSummary()
	require.NoError(t, corereport.Publish(sink, sum))

	vehicles, err := os.ReadFile(filepath.Join(dir, sum.RunID+"_vehicles.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(vehicles), "id;state;station_id;"))
	assert.Equal(t, len(sum.Vehicles)+1, strings.Count(string(vehicles), "\n"))

	series, err := os.ReadFile(filepath.Join(dir, sum.RunID+"_series.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(series), "kind;id;t;power_kw\n")
}
