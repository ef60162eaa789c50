package report

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

func influxServer(t *testing.T) (*httptest.Server, func() string) {
	t.Helper()
	var mu sync.Mutex
	var body strings.Builder
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body.Write(data)
		body.WriteString("\n")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() string {
		mu.Lock()
		defer mu.Unlock()
		return body.String()
	}
}

func TestInfluxSinkRecordSummary(t *testing.T) {
	srv, body := influxServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()
	sink.Epoch = time.Unix(0, 0)

	require.NoError(t, sink.RecordSummary(sampleSummary()))
	out := body()
	assert.Contains(t, out, "run_summary,allocator=greedy,rule=EDF,run_id=run-1 ")
	assert.Contains(t, out, "vehicle_visit,run_id=run-1,state=balked,vehicle_id=ev3 ")
	assert.Contains(t, out, "station_stats,run_id=run-1,station_id=se1 ")
	assert.Contains(t, out, "mean_satisfaction=75")
	assert.Contains(t, out, " 86400000000000")
}

func TestInfluxSinkRecordSeries(t *testing.T) {
	srv, body := influxServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer func() { _ = sink.Close() }()
	sink.Epoch = time.Unix(0, 0)

	require.NoError(t, sink.RecordSeries("run-1", sampleSummary().Series))
	lines := strings.Split(strings.TrimSpace(body()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[1], "power,id=se1,kind=station,run_id=run-1 power_kw=7 14400000000000")

	require.NoError(t, sink.RecordSeries("run-1", nil))
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	_, isNop := sink.(corereport.NopSink)
	assert.True(t, isNop, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}
