package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/factory"
	corereport "github.com/kilianp07/tgcsim/core/report"
)

func TestJSONLSinkWritesSummaryThenSeries(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLSink(&buf)
	require.NoError(t, corereport.Publish(sink, sampleSummary()))

	sc := bufio.NewScanner(&buf)
	var kinds []string
	for sc.Scan() {
		var rec struct {
			Type    string          `json:"type"`
			RunID   string          `json:"run_id"`
			Summary json.RawMessage `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		assert.Equal(t, "run-1", rec.RunID)
		kinds = append(kinds, rec.Type)
	}
	assert.Equal(t, []string{"summary", "series", "series"}, kinds)
}

func TestOpenJSONLSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	for i := 0; i < 2; i++ {
		sink, err := OpenJSONLSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.RecordSummary(sampleSummary()))
		require.NoError(t, sink.Close())
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestRotatingJSONLSinkFromFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	sink, err := corereport.NewSink([]factory.ModuleConfig{{Type: "jsonl", Conf: map[string]any{
		"path": path, "max_size_mb": 1, "max_backups": 2,
	}}})
	require.NoError(t, err)
	require.IsType(t, &JSONLSink{}, sink)
	require.NoError(t, corereport.Publish(sink, sampleSummary()))
	require.NoError(t, sink.(*JSONLSink).Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"summary"`)
}

func TestRotatingJSONLSinkNeedsPath(t *testing.T) {
	_, err := OpenRotatingJSONLSink("-", Rotation{MaxSizeMB: 1})
	assert.Error(t, err)
}
