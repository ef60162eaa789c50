package report

import (
	"time"

	"github.com/kilianp07/tgcsim/core/model"
)

// VehicleStats summarizes one vehicle visit.
type VehicleStats struct {
	ID           string  `json:"id"`
	State        string  `json:"state"`
	StationID    string  `json:"station_id,omitempty"`
	Arrival      float64 `json:"arrival"`
	ChargeStart  float64 `json:"charge_start"`
	Departure    float64 `json:"departure"`
	StayHours    float64 `json:"stay_hours"`
	RequestedKWh float64 `json:"requested_kwh"`
	DeliveredKWh float64 `json:"delivered_kwh"`
	UnmetKWh     float64 `json:"unmet_kwh"`
	Satisfaction float64 `json:"satisfaction_pct"`
}

// StationStats summarizes one station over the run.
type StationStats struct {
	ID               string  `json:"id"`
	Connected        bool    `json:"connected"`
	RatedKW          float64 `json:"rated_kw"`
	EnergyKWh        float64 `json:"energy_kwh"`
	ActiveHours      float64 `json:"active_hours"`
	Utilization      float64 `json:"utilization_pct"` // mean active power over rating
	Sessions         int     `json:"sessions"`
	MeanSessionHours float64 `json:"mean_session_hours"`
}

// GridStats summarizes the shared connection.
type GridStats struct {
	CeilingKW   float64 `json:"ceiling_kw"`
	EnergyKWh   float64 `json:"energy_kwh"`
	ActiveHours float64 `json:"active_hours"`
	Utilization float64 `json:"utilization_pct"` // delivered over delivered plus missed
	MissedKWh   float64 `json:"missed_kwh"`      // unused ceiling while active
	UnmetKWh    float64 `json:"unmet_kwh"`       // requested but not delivered to departed vehicles
	CostEUR     float64 `json:"cost_eur"`        // grid energy priced at the hourly tariff
}

// Series is the power series of one entity.
type Series struct {
	Kind    string         `json:"kind"` // vehicle, station or grid
	ID      string         `json:"id"`
	Samples []model.Sample `json:"samples"`
}

// Summary is the read-only result of a run.
type Summary struct {
	RunID            string         `json:"run_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Rule             string         `json:"rule"`
	Allocator        string         `json:"allocator"`
	HorizonHours     float64        `json:"horizon_hours"`
	Arrivals         int            `json:"arrivals"`
	Departed         int            `json:"departed"`
	Balked           int            `json:"balked"`
	Reneged          int            `json:"reneged"`
	InProgress       int            `json:"in_progress"`
	MeanSatisfaction float64        `json:"mean_satisfaction_pct"`
	QueueMeanLength  float64        `json:"queue_mean_length"`
	QueueMaxLength   int            `json:"queue_max_length"`
	DispatchCycles   int            `json:"dispatch_cycles"`
	Vehicles         []VehicleStats `json:"vehicles"`
	Stations         []StationStats `json:"stations"`
	Grid             GridStats      `json:"grid"`
	Series           []Series       `json:"-"`
}

// Sink receives the summary after a run.
type Sink interface {
	RecordSummary(s Summary) error
}

// SeriesRecorder is implemented by sinks exporting the power series.
type SeriesRecorder interface {
	RecordSeries(runID string, series []Series) error
}

// Closer is implemented by sinks holding connections or files.
type Closer interface {
	Close() error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSummary(Summary) error         { return nil }
func (NopSink) RecordSeries(string, []Series) error { return nil }
