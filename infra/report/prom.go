package report

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

// PromSink exposes the last run summary as Prometheus gauges.
type PromSink struct {
	vehicles     *prometheus.GaugeVec
	satisfaction prometheus.Gauge
	satHist      prometheus.Histogram
	queue        *prometheus.GaugeVec
	grid         *prometheus.GaugeVec
	station      *prometheus.GaugeVec
}

// NewPromSink registers the run metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		vehicles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tgcsim_run_vehicles",
			Help: "Vehicles of the last run by outcome",
		}, []string{"outcome"}),
		satisfaction: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tgcsim_run_mean_satisfaction_percent",
			Help: "Mean satisfaction of departed vehicles",
		}),
		satHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgcsim_vehicle_satisfaction_percent",
			Help:    "Satisfaction of departed vehicles",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		queue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tgcsim_run_queue_length",
			Help: "Waiting line length statistics",
		}, []string{"stat"}),
		grid: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tgcsim_run_grid",
			Help: "Grid connection statistics",
		}, []string{"stat"}),
		station: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tgcsim_station",
			Help: "Per station statistics",
		}, []string{"station", "stat"}),
	}

	var err error
	if s.vehicles, err = register(reg, s.vehicles); err != nil {
		return nil, err
	}
	if s.satisfaction, err = register(reg, s.satisfaction); err != nil {
		return nil, err
	}
	if s.satHist, err = register(reg, s.satHist); err != nil {
		return nil, err
	}
	if s.queue, err = register(reg, s.queue); err != nil {
		return nil, err
	}
	if s.grid, err = register(reg, s.grid); err != nil {
		return nil, err
	}
	if s.station, err = register(reg, s.station); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c is a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSummary updates the gauges with the run results.
func (s *PromSink) RecordSummary(sum corereport.Summary) error {
	s.vehicles.WithLabelValues("arrived").Set(float64(sum.Arrivals))
	s.vehicles.WithLabelValues("departed").Set(float64(sum.Departed))
	s.vehicles.WithLabelValues("balked").Set(float64(sum.Balked))
	s.vehicles.WithLabelValues("reneged").Set(float64(sum.Reneged))
	s.vehicles.WithLabelValues("in_progress").Set(float64(sum.InProgress))
	s.satisfaction.Set(sum.MeanSatisfaction)
	for _, v := range sum.Vehicles {
		if v.State == "departed" {
			s.satHist.Observe(v.Satisfaction)
		}
	}
	s.queue.WithLabelValues("mean").Set(sum.QueueMeanLength)
	s.queue.WithLabelValues("max").Set(float64(sum.QueueMaxLength))

	s.grid.WithLabelValues("ceiling_kw").Set(sum.Grid.CeilingKW)
	s.grid.WithLabelValues("energy_kwh").Set(sum.Grid.EnergyKWh)
	s.grid.WithLabelValues("utilization_percent").Set(sum.Grid.Utilization)
	s.grid.WithLabelValues("missed_kwh").Set(sum.Grid.MissedKWh)
	s.grid.WithLabelValues("unmet_kwh").Set(sum.Grid.UnmetKWh)
	s.grid.WithLabelValues("cost_eur").Set(sum.Grid.CostEUR)

	for _, st := range sum.Stations {
		s.station.WithLabelValues(st.ID, "energy_kwh").Set(st.EnergyKWh)
		s.station.WithLabelValues(st.ID, "utilization_percent").Set(st.Utilization)
		s.station.WithLabelValues(st.ID, "sessions").Set(float64(st.Sessions))
	}
	return nil
}
