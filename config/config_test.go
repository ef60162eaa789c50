package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/random"
)

const fullYAML = `simulation:
  horizon_hours: 48
  seed: 4343
  max_queue_length: -1
  max_wait_hours: 2
  layout: [true, true, false]
  grid_multiplier: 0.5
distributions:
  IAT: {dist: exponential, params: [0.5]}
  DUR: {dist: uniform, params: [1, 8]}
  CAP: {dist: normal, params: [60, 10]}
  MPI: {dist: constant, params: [11]}
  mpo: {dist: constant, params: [22]}
dispatch:
  rule: LLX
  allocator: lp
  lp:
    periods: 8
    prices: [0.1, 0.2]
report:
  sinks:
    - type: jsonl
      conf:
        path: runs.jsonl
logging:
  level: debug
  format: console
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", fullYAML))
	require.NoError(t, err)

	assert.Equal(t, 48.0, cfg.Simulation.HorizonHours)
	assert.Equal(t, uint64(4343), cfg.Simulation.Seed)
	assert.Equal(t, -1, cfg.Simulation.QueueLimit())
	assert.Equal(t, []bool{true, true, false}, cfg.Simulation.StationLayout())
	assert.Equal(t, 1e-3, cfg.Simulation.ToleranceKWh)
	assert.Equal(t, random.Spec{Dist: "constant", Params: []float64{22}}, cfg.Distributions[random.MPO])
	assert.Equal(t, "LLX", cfg.Dispatch.Rule)
	assert.Equal(t, 8, cfg.Dispatch.LP.Periods)
	assert.Equal(t, 0.25, cfg.Dispatch.LP.PeriodHours)
	assert.Equal(t, []float64{0.1, 0.2}, cfg.Dispatch.LP.Prices)
	require.Len(t, cfg.Report.Sinks, 1)
	assert.Equal(t, "jsonl", cfg.Report.Sinks[0].Type)
	assert.Equal(t, "runs.jsonl", cfg.Report.Sinks[0].Conf["path"])
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	t.Setenv("TGC_SIMULATION__HORIZON_HOURS", "10")
	t.Setenv("TGC_DISPATCH__RULE", "FIFO")
	path := writeConfig(t, "config.json", `{
  "simulation": {"stations": 3, "connected": 2, "scenario": "arrivals.yaml"},
  "distributions": {"MPO": {"dist": "uniform", "params": [7, 22]}}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Simulation.HorizonHours)
	assert.Equal(t, "FIFO", cfg.Dispatch.Rule)
	assert.Equal(t, "greedy", cfg.Dispatch.Allocator)
	assert.Equal(t, []bool{true, true, false}, cfg.Simulation.StationLayout())
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NotNil(t, cfg.Simulation.MaxQueueLength)
	assert.Equal(t, -1, cfg.Simulation.QueueLimit(), "an omitted queue length is unbounded")
	assert.Equal(t, -1, cfg.Simulation.Hub().MaxQueueLength)
}

func TestExplicitZeroQueueLengthIsKept(t *testing.T) {
	path := writeConfig(t, "config.yaml", `simulation:
  max_queue_length: 0
distributions:
  MPO: {dist: constant, params: [7]}
  IAT: {dist: constant, params: [1]}
  DUR: {dist: constant, params: [2]}
  CAP: {dist: constant, params: [40]}
  MPI: {dist: constant, params: [11]}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Simulation.QueueLimit())
	assert.Equal(t, 0, cfg.Simulation.Hub().MaxQueueLength)

	assert.Equal(t, -1, SimulationConfig{}.QueueLimit())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown rule":         "dispatch: {rule: XYZ}\n",
		"unknown distribution": "distributions: {IAT: {dist: zipf, params: [1]}}\n",
		"unknown key":          "distributions: {FOO: {dist: constant, params: [1]}}\n",
		"missing sampler":      "distributions: {MPO: {dist: constant, params: [7]}}\n",
		"negative horizon":     "simulation: {horizon_hours: -1}\n",
		"too many connected":   "simulation: {stations: 2, connected: 3}\n",
		"bad log format":       "logging: {format: xml}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestStationLayoutFromCounts(t *testing.T) {
	c := SimulationConfig{Stations: 4}
	assert.Equal(t, []bool{true, true, true, true}, c.StationLayout())
	c.Connected = 1
	assert.Equal(t, []bool{true, false, false, false}, c.StationLayout())
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true, false, false}, cfg.Simulation.StationLayout())
	assert.Equal(t, "LLX", cfg.Dispatch.Rule)
	assert.Len(t, cfg.Report.Sinks, 2)
	assert.Equal(t, 2, cfg.Simulation.QueueLimit())
}
