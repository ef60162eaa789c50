package hub

import (
	"fmt"
	"math"

	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/sim"
)

// Event priorities at equal timestamps, lower first.
const (
	PrioDispatch    = 0
	PrioStationWake = 0
	PrioVehicle     = 1
	PrioStationHold = 2
)

// vehicleProc drives one vehicle through its lifecycle.
type vehicleProc struct {
	h    *Hub
	v    *model.Vehicle
	proc *sim.Proc
	st   *stationProc
}

func (p *vehicleProc) Step(c *sim.Context) sim.Suspend {
	h := p.h
	now := c.Now()
	switch p.v.State {
	case model.Arriving:
		return h.admit(p)
	case model.Queued:
		// only the wait bound wakes a queued vehicle
		if h.line.Remove(now, p.v) {
			p.v.State = model.Reneged
			h.reneged++
			h.retire(p)
			h.publish(Event{At: now, Kind: EventRenege, VehicleID: p.v.ID})
		}
		return sim.Passivate()
	case model.ChargingCC, model.ChargingCV:
		h.relabel(p, now)
		h.requestDispatch()
		return sim.Passivate()
	default:
		return sim.Passivate()
	}
}

// stationProc cycles a station between idle and bound.
type stationProc struct {
	h       *Hub
	st      *model.Station
	proc    *sim.Proc
	vp      *vehicleProc
	claimed bool // woken for a waiting vehicle, not bound yet
}

func (p *stationProc) Step(c *sim.Context) sim.Suspend {
	h := p.h
	now := c.Now()
	if p.vp != nil {
		h.depart(p, now)
	}
	p.claimed = false
	v := h.line.Pop(now)
	if v == nil {
		return sim.Passivate()
	}
	vp := h.active[v.ID]
	if err := p.st.Bind(v, now); err != nil {
		c.Fail(err)
		return sim.Passivate()
	}
	p.vp = vp
	vp.st = p
	h.publish(Event{At: now, Kind: EventBind, VehicleID: v.ID, StationID: p.st.ID})
	h.log.Debugf("t=%.3f %s bound to %s", now, v.ID, p.st.ID)
	c.Activate(vp.proc, PrioVehicle)
	h.requestDispatch()
	return sim.Hold(v.StayHours, PrioStationHold)
}

// dispatcherProc reallocates grid power on request and at phase boundaries.
type dispatcherProc struct {
	h    *Hub
	proc *sim.Proc
}

func (p *dispatcherProc) Step(c *sim.Context) sim.Suspend {
	h := p.h
	now := c.Now()
	slots := make([]dispatch.Slot, len(h.stations))
	for i, sp := range h.stations {
		slots[i] = h.slotFor(sp, now)
	}
	res, err := h.dispatcher.Cycle(now, slots)
	if err != nil {
		c.Fail(fmt.Errorf("dispatch: %w", err))
		return sim.Passivate()
	}
	powers := make(map[string]float64, len(res.Ranked))
	for i, s := range res.Ranked {
		powers[s.StationID] = res.PowerKW[i]
	}

	total := 0.0
	for _, sp := range h.stations {
		var v *model.Vehicle
		if sp.vp != nil {
			v = sp.vp.v
		}
		if kw := powers[sp.st.ID]; kw != sp.st.PowerKW {
			sp.st.SetPower(v, now, kw)
		}
		total += sp.st.PowerKW
	}
	if total != h.grid.PowerKW() {
		h.grid.Record(now, total)
	}
	h.publish(Event{At: now, Kind: EventDispatch, PowerKW: total})

	next := math.Inf(1)
	for _, sp := range h.stations {
		if sp.vp == nil {
			continue
		}
		vp := sp.vp
		h.relabel(vp, now)
		wake := h.nextWake(vp, sp.st.PowerKW, now)
		if math.IsInf(wake, 1) {
			c.Cancel(vp.proc)
			continue
		}
		c.ActivateAt(vp.proc, wake, PrioVehicle)
		next = math.Min(next, wake)
	}
	if math.IsInf(next, 1) {
		return sim.Passivate()
	}
	c.ActivateAt(p.proc, next, PrioDispatch)
	return sim.Passivate()
}

// generator emits vehicles from the arrival source.
type generator struct {
	h       *Hub
	proc    *sim.Proc
	pending *model.Vehicle
	count   int
}

func (g *generator) Step(c *sim.Context) sim.Suspend {
	h := g.h
	now := c.Now()
	if g.pending != nil {
		h.arrive(g.pending, now)
		g.pending = nil
		g.count++
	}
	if h.cfg.MaxVehicles > 0 && g.count >= h.cfg.MaxVehicles {
		return sim.Passivate()
	}
	v, at, ok := h.source.Next(now)
	if !ok {
		return sim.Passivate()
	}
	if v.ID == "" {
		v.ID = fmt.Sprintf("ev%d", g.count+1)
	}
	g.pending = v
	c.ActivateAt(g.proc, at, PrioVehicle)
	return sim.Passivate()
}
