package report

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromSinkRecordSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSummary(sampleSummary()))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.vehicles.WithLabelValues("departed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.vehicles.WithLabelValues("balked")))
	assert.Equal(t, 75.0, testutil.ToFloat64(sink.satisfaction))
	assert.Equal(t, 54.0, testutil.ToFloat64(sink.grid.WithLabelValues("energy_kwh")))
	assert.Equal(t, 18.9, testutil.ToFloat64(sink.grid.WithLabelValues("cost_eur")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.station.WithLabelValues("se1", "sessions")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.satHist))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, second.RecordSummary(sampleSummary()))
	assert.Equal(t, 3.0, testutil.ToFloat64(first.vehicles.WithLabelValues("arrived")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSummary(sampleSummary()))

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tgcsim_run_mean_satisfaction_percent 75")
}
