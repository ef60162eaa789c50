package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/logger"
	"github.com/kilianp07/tgcsim/core/report"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			sum, err := Run(context.Background(), sc, logger.Nop{})
			require.NoError(t, err)
			assert.Empty(t, Check(sc, sum))
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("name: x\nsignals: []\n"), 0o644))
	_, err = Load(unknown)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("hub: {horizon_hours: 1}\n"), 0o644))
	_, err = Load(unnamed)
	assert.Error(t, err)
}

func TestCheckReportsMismatches(t *testing.T) {
	two, sat := 2, 50.0
	sc := &Scenario{Expected: Expected{
		Departed:         &two,
		MeanSatisfaction: &sat,
		Delivered:        map[string]float64{"a": 10, "ghost": 1},
		States:           map[string]string{"a": "departed"},
	}}
	sum := report.Summary{
		Departed:         1,
		MeanSatisfaction: 50,
		Vehicles:         []report.VehicleStats{{ID: "a", State: "reneged", DeliveredKWh: 10}},
	}
	msgs := Check(sc, sum)
	assert.Equal(t, []string{
		"departed: want 2, got 1",
		"vehicle ghost missing",
		`state a: want departed, got "reneged"`,
	}, msgs)
}
