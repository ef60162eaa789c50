package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/factory"
	corereport "github.com/kilianp07/tgcsim/core/report"
)

func TestBuiltinSinksRegistered(t *testing.T) {
	names := corereport.SinkNames()
	for _, n := range []string{"influx", "jsonl", "mqtt", "nop", "prometheus", "sqlite", "csv"} {
		assert.Contains(t, names, n)
	}
}

func TestNewSinkFansOut(t *testing.T) {
	dir := t.TempDir()
	sink, err := corereport.NewSink([]factory.ModuleConfig{
		{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(dir, "runs.jsonl")}},
		{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "runs.db")}},
	})
	require.NoError(t, err)
	multi, ok := sink.(*corereport.MultiSink)
	require.True(t, ok)
	require.Len(t, multi.Sinks, 2)
	assert.IsType(t, &JSONLSink{}, multi.Sinks[0])
	assert.IsType(t, &SQLiteStore{}, multi.Sinks[1])

	require.NoError(t, corereport.Publish(sink, sampleSummary()))
	require.NoError(t, multi.Close())
}

func TestNewSinkUnknownType(t *testing.T) {
	_, err := corereport.NewSink([]factory.ModuleConfig{{Type: "carrier-pigeon"}})
	assert.True(t, errors.Is(err, factory.ErrUnknownModule))
}

func TestMQTTSinkFactoryRequiresBroker(t *testing.T) {
	_, err := corereport.NewSink([]factory.ModuleConfig{{Type: "mqtt", Conf: map[string]any{"topic_prefix": "x"}}})
	assert.Error(t, err)
}
