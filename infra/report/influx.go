package report

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	corereport "github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/infra/logger"
)

// InfluxSink writes run results to an InfluxDB bucket. Simulated hours are
// mapped onto wall time starting at Epoch.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	Epoch    time.Time
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		Epoch:    time.Now().UTC().Truncate(time.Hour),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) corereport.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return corereport.NopSink{}
	}
	return sink
}

func (s *InfluxSink) at(hours float64) time.Time {
	return s.Epoch.Add(time.Duration(hours * float64(time.Hour)))
}

// RecordSummary writes one run point, one point per vehicle and per station.
func (s *InfluxSink) RecordSummary(sum corereport.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := []*write.Point{
		write.NewPointWithMeasurement("run_summary").
			AddTag("run_id", sum.RunID).
			AddTag("rule", sum.Rule).
			AddTag("allocator", sum.Allocator).
			AddField("arrivals", sum.Arrivals).
			AddField("departed", sum.Departed).
			AddField("balked", sum.Balked).
			AddField("reneged", sum.Reneged).
			AddField("mean_satisfaction", round3(sum.MeanSatisfaction)).
			AddField("queue_mean_length", round3(sum.QueueMeanLength)).
			AddField("grid_energy_kwh", round3(sum.Grid.EnergyKWh)).
			AddField("grid_utilization", round3(sum.Grid.Utilization)).
			AddField("grid_missed_kwh", round3(sum.Grid.MissedKWh)).
			AddField("grid_unmet_kwh", round3(sum.Grid.UnmetKWh)).
			AddField("grid_cost_eur", round3(sum.Grid.CostEUR)).
			SetTime(s.at(sum.HorizonHours)),
	}
	for _, v := range sum.Vehicles {
		points = append(points, write.NewPointWithMeasurement("vehicle_visit").
			AddTag("run_id", sum.RunID).
			AddTag("vehicle_id", v.ID).
			AddTag("state", v.State).
			AddField("requested_kwh", round3(v.RequestedKWh)).
			AddField("delivered_kwh", round3(v.DeliveredKWh)).
			AddField("satisfaction", round3(v.Satisfaction)).
			SetTime(s.at(v.Arrival)))
	}
	for _, st := range sum.Stations {
		points = append(points, write.NewPointWithMeasurement("station_stats").
			AddTag("run_id", sum.RunID).
			AddTag("station_id", st.ID).
			AddField("energy_kwh", round3(st.EnergyKWh)).
			AddField("utilization", round3(st.Utilization)).
			AddField("sessions", st.Sessions).
			SetTime(s.at(sum.HorizonHours)))
	}
	return s.write(ctx, points)
}

// RecordSeries writes every power sample.
func (s *InfluxSink) RecordSeries(runID string, series []corereport.Series) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	var points []*write.Point
	for _, sr := range series {
		for _, smp := range sr.Samples {
			points = append(points, write.NewPointWithMeasurement("power").
				AddTag("run_id", runID).
				AddTag("kind", sr.Kind).
				AddTag("id", sr.ID).
				AddField("power_kw", round3(smp.PowerKW)).
				SetTime(s.at(smp.At)))
		}
	}
	if len(points) == 0 {
		return nil
	}
	return s.write(ctx, points)
}

// write emits points with their tags in canonical sorted order.
func (s *InfluxSink) write(ctx context.Context, points []*write.Point) error {
	for _, p := range points {
		p.SortTags()
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
