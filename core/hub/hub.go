// Package hub simulates a charging hub: vehicles arrive, wait for a free
// station, charge under a shared grid ceiling and leave when their stay ends.
package hub

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tgcsim/core/chargecurve"
	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/logger"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/sim"
	"github.com/kilianp07/tgcsim/internal/eventbus"
)

// Config holds the run parameters of a hub.
type Config struct {
	HorizonHours   float64
	MaxVehicles    int     // 0 means unlimited
	MaxQueueLength int     // negative means unbounded
	MaxWaitHours   float64 // 0 disables reneging
	ToleranceKWh   float64 // CV solver tolerance
	CVStepHours    float64 // optional re-evaluation step during CV
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	switch {
	case c.HorizonHours <= 0 || math.IsNaN(c.HorizonHours):
		return fmt.Errorf("horizon must be positive: %w", model.ErrConfiguration)
	case c.MaxVehicles < 0:
		return fmt.Errorf("max vehicles must not be negative: %w", model.ErrConfiguration)
	case c.MaxWaitHours < 0 || c.CVStepHours < 0 || c.ToleranceKWh < 0:
		return fmt.Errorf("wait bound, cv step and tolerance must not be negative: %w", model.ErrConfiguration)
	}
	return nil
}

// GridCeiling returns explicitKW when positive, otherwise multiplier times
// the rated power of the connected stations.
func GridCeiling(stations []*model.Station, multiplier, explicitKW float64) float64 {
	if explicitKW > 0 {
		return explicitKW
	}
	total := 0.0
	for _, s := range stations {
		if s.Connected {
			total += s.RatedKW
		}
	}
	return multiplier * total
}

// Option customizes a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(h *Hub) { h.log = logger.OrNop(l) } }

// WithEventBus publishes trace events on bus.
func WithEventBus(bus *eventbus.TypedBus[Event]) Option { return func(h *Hub) { h.bus = bus } }

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option { return func(h *Hub) { h.runID = id } }

// Hub wires the vehicle, station, dispatcher and generator processes on one
// simulation context.
type Hub struct {
	cfg        Config
	sim        *sim.Context
	line       *WaitingLine
	stations   []*stationProc
	dispatcher *dispatch.Dispatcher
	tgc        *dispatcherProc
	gen        *generator
	source     ArrivalSource

	active  map[string]*vehicleProc
	seen    map[string]struct{}
	all     []*model.Vehicle
	grid    model.EnergyLog
	balked  int
	reneged int
	ran     bool

	runID string
	bus   *eventbus.TypedBus[Event]
	log   logger.Logger
}

// New builds a hub. Station IDs must be unique.
func New(cfg Config, stations []*model.Station, src ArrivalSource, d *dispatch.Dispatcher, opts ...Option) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations: %w", model.ErrConfiguration)
	}
	if src == nil || d == nil {
		return nil, fmt.Errorf("arrival source and dispatcher are required: %w", model.ErrConfiguration)
	}
	if cfg.ToleranceKWh == 0 {
		cfg.ToleranceKWh = chargecurve.DefaultTolerance
	}
	h := &Hub{
		cfg:        cfg,
		sim:        sim.New(),
		line:       newWaitingLine(0),
		dispatcher: d,
		source:     src,
		active:     make(map[string]*vehicleProc),
		seen:       make(map[string]struct{}),
		runID:      uuid.NewString(),
		log:        logger.Nop{},
	}
	for _, o := range opts {
		o(h)
	}
	seen := make(map[string]bool, len(stations))
	for _, st := range stations {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("duplicate station %s: %w", st.ID, model.ErrConfiguration)
		}
		seen[st.ID] = true
		sp := &stationProc{h: h, st: st}
		sp.proc = h.sim.Spawn(st.ID, sp)
		h.stations = append(h.stations, sp)
	}
	h.grid.Reset(0)
	h.tgc = &dispatcherProc{h: h}
	h.tgc.proc = h.sim.Spawn("tgc", h.tgc)
	h.gen = &generator{h: h}
	h.gen.proc = h.sim.Spawn("generator", h.gen)
	return h, nil
}

// RunID returns the run identifier.
func (h *Hub) RunID() string { return h.runID }

// Now returns the simulated time.
func (h *Hub) Now() float64 { return h.sim.Now() }

// Run executes the simulation up to the horizon. It fails on context
// cancellation or an allocation invariant violation.
func (h *Hub) Run(ctx context.Context) error {
	if h.ran {
		return errors.New("hub already ran")
	}
	h.ran = true
	h.log.Infof("run %s: %d stations, ceiling %.2f kW, rule %s, horizon %.2fh",
		h.runID, len(h.stations), h.dispatcher.CeilingKW, h.dispatcher.Rule.Name, h.cfg.HorizonHours)
	start := time.Now()
	h.sim.Activate(h.gen.proc, PrioVehicle)
	err := h.sim.RunUntil(ctx, h.cfg.HorizonHours)
	h.finish(h.sim.Now())
	if err != nil {
		h.log.Errorf("run %s stopped at t=%.3fh: %v", h.runID, h.sim.Now(), err)
		return err
	}
	h.log.Infof("run %s done: %d events in %s", h.runID, h.sim.EventsProcessed, time.Since(start))
	return nil
}

func (h *Hub) finish(at float64) {
	for _, sp := range h.stations {
		if sp.vp != nil {
			sp.vp.v.Energy.Finalize(at)
		}
		sp.st.Energy.Finalize(at)
	}
	h.grid.Finalize(at)
}

func (h *Hub) arrive(v *model.Vehicle, now float64) {
	v.Created = now
	v.State = model.Arriving
	if err := v.Validate(); err != nil {
		h.log.Warnf("t=%.3f dropping invalid vehicle: %v", now, err)
		return
	}
	if _, dup := h.seen[v.ID]; dup {
		h.log.Warnf("t=%.3f dropping duplicate vehicle %s", now, v.ID)
		return
	}
	h.seen[v.ID] = struct{}{}
	vp := &vehicleProc{h: h, v: v}
	vp.proc = h.sim.Spawn(v.ID, vp)
	h.active[v.ID] = vp
	h.all = append(h.all, v)
	h.publish(Event{At: now, Kind: EventArrival, VehicleID: v.ID})
	h.sim.Activate(vp.proc, PrioVehicle)
}

// admit enqueues an arriving vehicle or balks it when no station is free and
// the unclaimed part of the line is at its bound.
func (h *Hub) admit(vp *vehicleProc) sim.Suspend {
	now := h.sim.Now()
	free, claimed := 0, 0
	var wake *stationProc
	for _, sp := range h.stations {
		switch {
		case sp.claimed:
			claimed++
		case sp.vp == nil:
			free++
			if wake == nil || (!wake.st.Connected && sp.st.Connected) {
				wake = sp
			}
		}
	}
	waiting := h.line.Len() - claimed
	if free == 0 && h.cfg.MaxQueueLength >= 0 && waiting >= h.cfg.MaxQueueLength {
		vp.v.State = model.Balked
		h.balked++
		h.retire(vp)
		h.publish(Event{At: now, Kind: EventBalk, VehicleID: vp.v.ID})
		h.log.Debugf("t=%.3f %s balked, %d waiting", now, vp.v.ID, waiting)
		return sim.Passivate()
	}
	vp.v.State = model.Queued
	h.line.Push(now, vp.v)
	h.publish(Event{At: now, Kind: EventQueue, VehicleID: vp.v.ID})
	if wake != nil {
		wake.claimed = true
		h.sim.Activate(wake.proc, PrioStationWake)
	}
	if h.cfg.MaxWaitHours > 0 {
		return sim.Hold(h.cfg.MaxWaitHours, PrioVehicle)
	}
	return sim.Passivate()
}

func (h *Hub) depart(sp *stationProc, now float64) {
	vp := sp.vp
	sp.st.Unbind(vp.v, now)
	h.sim.Cancel(vp.proc)
	sp.vp = nil
	vp.st = nil
	h.retire(vp)
	h.publish(Event{At: now, Kind: EventDepart, VehicleID: vp.v.ID, StationID: sp.st.ID})
	h.log.Debugf("t=%.3f %s left %s with %.2f kWh", now, vp.v.ID, sp.st.ID, vp.v.DeliveredKWh(now))
	h.requestDispatch()
}

func (h *Hub) retire(vp *vehicleProc) {
	delete(h.active, vp.v.ID)
}

func (h *Hub) relabel(vp *vehicleProc, now float64) {
	if ph := vp.v.PhaseAt(now); ph != vp.v.State {
		vp.v.State = ph
		h.publish(Event{At: now, Kind: EventPhase, VehicleID: vp.v.ID, Detail: ph.String()})
	}
}

func (h *Hub) requestDispatch() {
	p := h.tgc.proc
	if p.Pending() && p.WakeAt() == h.sim.Now() {
		return
	}
	h.sim.Activate(p, PrioDispatch)
}

func (h *Hub) slotFor(sp *stationProc, now float64) dispatch.Slot {
	s := dispatch.Slot{StationID: sp.st.ID, Connected: sp.st.Connected, RatedKW: sp.st.RatedKW}
	if sp.vp == nil {
		return s
	}
	v := sp.vp.v
	s.VehicleID = v.ID
	s.Arrival = v.ChargeStart
	s.Deadline = v.Deadline()
	s.ProcessingHours = v.ProcessingHours()
	s.RemainingChargeHours = v.RemainingChargeHours(now)
	s.Laxity = v.Laxity(now)
	s.DemandKW = v.DemandKW(now, sp.st.RatedKW, h.cfg.ToleranceKWh)
	s.RemainingKWh = v.UnmetKWh(now)
	return s
}

// nextWake returns when a vehicle charging at kw reaches its current phase
// target, +Inf when that happens at or after its departure.
func (h *Hub) nextWake(vp *vehicleProc, kw, now float64) float64 {
	if kw <= 0 {
		return math.Inf(1)
	}
	v := vp.v
	phase := v.PhaseAt(now)
	target := v.UnmetKWh(now)
	if phase == model.ChargingCC {
		target = math.Min(target, v.BreakpointKWh()-v.DeliveredKWh(now))
	}
	dt := target / kw
	if phase == model.ChargingCV && h.cfg.CVStepHours > 0 {
		dt = math.Min(dt, h.cfg.CVStepHours)
	}
	if dt <= 0 {
		return math.Inf(1)
	}
	if wake := now + dt; wake < v.Deadline() {
		return wake
	}
	return math.Inf(1)
}

func (h *Hub) publish(e Event) {
	if h.bus != nil {
		h.bus.Publish(e)
	}
}
