package hub

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/random"
)

// ArrivalSource produces the vehicles visiting the hub.
type ArrivalSource interface {
	// Next returns the next vehicle and its arrival time, never before now.
	// ok is false once the source is exhausted.
	Next(now float64) (v *model.Vehicle, at float64, ok bool)
}

// minCapacityKWh keeps sampled capacities physically meaningful.
const minCapacityKWh = 1

// RandomArrivals samples vehicles from the attribute distributions. The first
// vehicle arrives at the start of the run, the following ones after an IAT draw.
type RandomArrivals struct {
	set     *random.Set
	started bool
}

// NewRandomArrivals checks that the mandatory attributes are configured.
// ISC, DSC, DEG and CVP default to 0, 1, 0 and 1.
func NewRandomArrivals(set *random.Set) (*RandomArrivals, error) {
	if err := set.Require(random.IAT, random.DUR, random.CAP, random.MPI); err != nil {
		return nil, err
	}
	return &RandomArrivals{set: set}, nil
}

// Next implements ArrivalSource.
func (r *RandomArrivals) Next(now float64) (*model.Vehicle, float64, bool) {
	at := now
	if r.started {
		at += math.Max(r.set.Sample(random.IAT, 0), 0)
	}
	r.started = true

	initial := clamp01(r.set.Sample(random.ISC, 0))
	bp := r.set.Sample(random.CVP, 1)
	if bp > 1 {
		// percent of capacity
		bp /= 100
	}
	v := &model.Vehicle{
		StayHours:   math.Max(r.set.Sample(random.DUR, 0), 0),
		CapacityKWh: math.Max(r.set.Sample(random.CAP, 0), minCapacityKWh),
		InitialSoC:  initial,
		DesiredSoC:  math.Max(clamp01(r.set.Sample(random.DSC, 1)), initial),
		MaxInputKW:  math.Max(r.set.Sample(random.MPI, 0), 0),
		Decay:       math.Max(r.set.Sample(random.DEG, 0), 0),
		Breakpoint:  clamp01(bp),
	}
	return v, at, true
}

// Arrival is one scheduled visit.
type Arrival struct {
	At         float64 `yaml:"at"`
	ID         string  `yaml:"id"`
	StayHours  float64 `yaml:"stay_hours"`
	Capacity   float64 `yaml:"capacity_kwh"`
	InitialSoC float64 `yaml:"initial_soc"`
	DesiredSoC float64 `yaml:"desired_soc"`
	MaxInputKW float64 `yaml:"max_input_kw"`
	Decay      float64 `yaml:"decay"`
	Breakpoint float64 `yaml:"breakpoint"`
}

// Vehicle returns the vehicle described by a.
func (a Arrival) Vehicle() *model.Vehicle {
	return &model.Vehicle{
		ID:          a.ID,
		StayHours:   a.StayHours,
		CapacityKWh: a.Capacity,
		InitialSoC:  a.InitialSoC,
		DesiredSoC:  a.DesiredSoC,
		MaxInputKW:  a.MaxInputKW,
		Decay:       a.Decay,
		Breakpoint:  a.Breakpoint,
	}
}

// ScheduledArrivals replays a fixed list of arrivals in time order.
type ScheduledArrivals struct {
	list []Arrival
	next int
}

// NewScheduledArrivals validates and sorts the arrivals. Equal times keep
// their order. Explicit IDs must be unique; empty ones are assigned by the hub.
func NewScheduledArrivals(list []Arrival) (*ScheduledArrivals, error) {
	cp := make([]Arrival, len(list))
	copy(cp, list)
	ids := make(map[string]int, len(cp))
	for i, a := range cp {
		if a.ID != "" {
			if j, dup := ids[a.ID]; dup {
				return nil, fmt.Errorf("arrival %d reuses id %q of arrival %d: %w", i, a.ID, j, model.ErrConfiguration)
			}
			ids[a.ID] = i
		}
		if a.At < 0 || math.IsNaN(a.At) {
			return nil, fmt.Errorf("arrival %d at %v: %w", i, a.At, model.ErrConfiguration)
		}
		if err := a.Vehicle().Validate(); err != nil {
			return nil, fmt.Errorf("arrival %d: %w", i, err)
		}
	}
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].At < cp[j].At })
	return &ScheduledArrivals{list: cp}, nil
}

// LoadScenario reads a YAML list of arrivals.
func LoadScenario(r io.Reader) (*ScheduledArrivals, error) {
	var doc struct {
		Arrivals []Arrival `yaml:"arrivals"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scenario: %v: %w", err, model.ErrConfiguration)
	}
	return NewScheduledArrivals(doc.Arrivals)
}

// Len returns the number of scheduled arrivals.
func (s *ScheduledArrivals) Len() int { return len(s.list) }

// Next implements ArrivalSource.
func (s *ScheduledArrivals) Next(now float64) (*model.Vehicle, float64, bool) {
	if s.next >= len(s.list) {
		return nil, 0, false
	}
	a := s.list[s.next]
	s.next++
	return a.Vehicle(), math.Max(a.At, now), true
}

func clamp01(v float64) float64 { return math.Min(math.Max(v, 0), 1) }
