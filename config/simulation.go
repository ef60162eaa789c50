package config

import (
	"fmt"
	"math"

	"github.com/kilianp07/tgcsim/core/hub"
	"github.com/kilianp07/tgcsim/core/model"
)

// SimulationConfig describes the hub, its grid connection and the run.
type SimulationConfig struct {
	HorizonHours   float64 `json:"horizon_hours"`
	Seed           uint64  `json:"seed"`
	MaxVehicles    int     `json:"max_vehicles"`     // 0 means unlimited
	MaxQueueLength *int    `json:"max_queue_length"` // negative or omitted means unbounded
	MaxWaitHours   float64 `json:"max_wait_hours"`   // 0 disables reneging
	Layout         []bool  `json:"layout"`           // connection flag per station
	Stations       int     `json:"stations"`         // used when layout is empty
	Connected      int     `json:"connected"`        // first n stations connected, 0 means all
	GridMultiplier float64 `json:"grid_multiplier"`
	GridCeilingKW  float64 `json:"grid_ceiling_kw"` // overrides the multiplier when positive
	ToleranceKWh   float64 `json:"tolerance_kwh"`
	CVStepHours    float64 `json:"cv_step_hours"`
	Scenario       string  `json:"scenario"` // YAML arrival list replacing random arrivals
}

// SetDefaults fills zero values.
func (c *SimulationConfig) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = 24
	}
	if len(c.Layout) == 0 && c.Stations == 0 {
		c.Stations = 1
	}
	if c.GridMultiplier == 0 {
		c.GridMultiplier = 1
	}
	if c.ToleranceKWh == 0 {
		c.ToleranceKWh = 1e-3
	}
	if c.MaxQueueLength == nil {
		unbounded := -1
		c.MaxQueueLength = &unbounded
	}
}

// QueueLimit returns the waiting line capacity, -1 when unbounded.
func (c SimulationConfig) QueueLimit() int {
	if c.MaxQueueLength == nil {
		return -1
	}
	return *c.MaxQueueLength
}

// Validate checks the run and hub parameters.
func (c SimulationConfig) Validate() error {
	if err := c.Hub().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	switch {
	case len(c.Layout) == 0 && c.Stations <= 0:
		return fmt.Errorf("simulation: at least one station is required: %w", model.ErrConfiguration)
	case c.Connected < 0 || (len(c.Layout) == 0 && c.Connected > c.Stations):
		return fmt.Errorf("simulation: connected must lie in [0, stations]: %w", model.ErrConfiguration)
	case c.GridMultiplier < 0 || c.GridCeilingKW < 0 || math.IsNaN(c.GridMultiplier):
		return fmt.Errorf("simulation: grid ceiling must not be negative: %w", model.ErrConfiguration)
	}
	return nil
}

// StationLayout returns the connection flag of every station in order.
func (c SimulationConfig) StationLayout() []bool {
	if len(c.Layout) > 0 {
		out := make([]bool, len(c.Layout))
		copy(out, c.Layout)
		return out
	}
	connected := c.Connected
	if connected == 0 {
		connected = c.Stations
	}
	out := make([]bool, c.Stations)
	for i := range out {
		out[i] = i < connected
	}
	return out
}

// Hub returns the run parameters of the hub.
func (c SimulationConfig) Hub() hub.Config {
	return hub.Config{
		HorizonHours:   c.HorizonHours,
		MaxVehicles:    c.MaxVehicles,
		MaxQueueLength: c.QueueLimit(),
		MaxWaitHours:   c.MaxWaitHours,
		ToleranceKWh:   c.ToleranceKWh,
		CVStepHours:    c.CVStepHours,
	}
}
