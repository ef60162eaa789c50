// Package scenarios replays hand-written hub scenarios and checks their
// outcome against the expectations stored next to them.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tgcsim/core/hub"
	"github.com/kilianp07/tgcsim/core/model"
)

type StationDef struct {
	ID        string  `yaml:"id"`
	RatedKW   float64 `yaml:"rated_kw"`
	Connected *bool   `yaml:"connected"` // defaults to true
}

func (s StationDef) ToModel() *model.Station {
	connected := s.Connected == nil || *s.Connected
	return model.NewStation(s.ID, s.RatedKW, connected)
}

type HubDef struct {
	HorizonHours   float64 `yaml:"horizon_hours"`
	MaxQueueLength int     `yaml:"max_queue_length"`
	MaxWaitHours   float64 `yaml:"max_wait_hours"`
	CeilingKW      float64 `yaml:"ceiling_kw"`
	Rule           string  `yaml:"rule"`
	Allocator      string  `yaml:"allocator"`
}

// Expected lists the checked outcome. Nil fields are not checked.
type Expected struct {
	Arrivals         *int               `yaml:"arrivals"`
	Departed         *int               `yaml:"departed"`
	Balked           *int               `yaml:"balked"`
	Reneged          *int               `yaml:"reneged"`
	InProgress       *int               `yaml:"in_progress"`
	MeanSatisfaction *float64           `yaml:"mean_satisfaction_pct"`
	GridEnergyKWh    *float64           `yaml:"grid_energy_kwh"`
	Delivered        map[string]float64 `yaml:"delivered_kwh"`
	States           map[string]string  `yaml:"states"`
	Tolerance        float64            `yaml:"tolerance"`
}

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Hub         HubDef        `yaml:"hub"`
	Stations    []StationDef  `yaml:"stations"`
	Arrivals    []hub.Arrival `yaml:"arrivals"`
	Expected    Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var sc Scenario
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required: %w", path, model.ErrConfiguration)
	}
	return &sc, nil
}
