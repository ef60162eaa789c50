package hub

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/core/tariff"
)

// Summary collects the run statistics. Satisfaction and unmet energy only
// count vehicles that left after charging; queued and charging vehicles at
// the horizon are reported as in progress.
func (h *Hub) Summary() report.Summary {
	now := h.sim.Now()
	s := report.Summary{
		RunID:           h.runID,
		CreatedAt:       time.Now().UTC(),
		Rule:            h.dispatcher.Rule.Name,
		Allocator:       h.dispatcher.Allocator.Name(),
		HorizonHours:    h.cfg.HorizonHours,
		Arrivals:        len(h.all),
		Balked:          h.balked,
		Reneged:         h.reneged,
		QueueMeanLength: h.line.MeanLen(now),
		QueueMaxLength:  h.line.MaxLen(),
		DispatchCycles:  h.dispatcher.Cycles(),
	}

	var satisfaction []float64
	var unmet float64
	for _, v := range h.all {
		at := now
		if v.State == model.Departed {
			at = v.Departure
		}
		vs := report.VehicleStats{
			ID:           v.ID,
			State:        v.State.String(),
			StationID:    v.StationID,
			Arrival:      v.Created,
			ChargeStart:  v.ChargeStart,
			Departure:    v.Departure,
			StayHours:    v.StayHours,
			RequestedKWh: v.RequestedKWh(),
		}
		switch v.State {
		case model.Departed:
			s.Departed++
			vs.DeliveredKWh = v.DeliveredKWh(at)
			vs.UnmetKWh = v.UnmetKWh(at)
			vs.Satisfaction = v.Satisfaction(at)
			satisfaction = append(satisfaction, vs.Satisfaction)
			unmet += vs.UnmetKWh
		case model.ChargingCC, model.ChargingCV:
			s.InProgress++
			vs.DeliveredKWh = v.DeliveredKWh(at)
			vs.UnmetKWh = v.UnmetKWh(at)
			vs.Satisfaction = v.Satisfaction(at)
		case model.Queued:
			s.InProgress++
		}
		s.Vehicles = append(s.Vehicles, vs)
		if v.Charging() || v.State == model.Departed {
			s.Series = append(s.Series, report.Series{Kind: "vehicle", ID: v.ID, Samples: v.Energy.Samples()})
		}
	}
	if len(satisfaction) > 0 {
		s.MeanSatisfaction = stat.Mean(satisfaction, nil)
	}

	for _, sp := range h.stations {
		st := sp.st
		ss := report.StationStats{
			ID:          st.ID,
			Connected:   st.Connected,
			RatedKW:     st.RatedKW,
			EnergyKWh:   st.Energy.Energy(),
			ActiveHours: st.Energy.ActiveHours(),
			Sessions:    st.Sessions,
		}
		if st.RatedKW > 0 {
			ss.Utilization = 100 * st.Energy.MeanActivePower() / st.RatedKW
		}
		closed := st.Sessions
		if sp.vp != nil {
			closed--
		}
		if closed > 0 {
			ss.MeanSessionHours = st.BoundHours / float64(closed)
		}
		s.Stations = append(s.Stations, ss)
		s.Series = append(s.Series, report.Series{Kind: "station", ID: st.ID, Samples: st.Energy.Samples()})
	}

	s.Grid = gridStats(&h.grid, h.dispatcher.CeilingKW, unmet)
	s.Grid.CostEUR = gridCost(h.grid.Samples(), now, tariffOf(h.dispatcher.Allocator))
	s.Series = append(s.Series, report.Series{Kind: "grid", ID: "grid", Samples: h.grid.Samples()})
	return s
}

func gridStats(l *model.EnergyLog, ceilingKW, unmet float64) report.GridStats {
	g := report.GridStats{
		CeilingKW:   ceilingKW,
		EnergyKWh:   l.Energy(),
		ActiveHours: l.ActiveHours(),
		UnmetKWh:    unmet,
	}
	capacity := g.ActiveHours * ceilingKW
	if capacity > 0 {
		g.MissedKWh = max(capacity-g.EnergyKWh, 0)
		g.Utilization = 100 * g.EnergyKWh / capacity
	}
	return g
}

// tariffOf returns the price schedule the allocator optimizes against, or the
// default schedule for allocators that ignore prices.
func tariffOf(a dispatch.Allocator) *tariff.Schedule {
	if lp, ok := a.(*dispatch.LPAllocator); ok && lp.Tariff != nil {
		return lp.Tariff
	}
	sched, _ := tariff.New(nil)
	return sched
}

// gridCost prices a piecewise constant power series. Each sample holds until
// the next one and the last one until end.
func gridCost(samples []model.Sample, end float64, sched *tariff.Schedule) float64 {
	total := 0.0
	for i, smp := range samples {
		to := end
		if i+1 < len(samples) {
			to = samples[i+1].At
		}
		if smp.PowerKW > 0 && to > smp.At {
			total += sched.Cost(smp.At, to, smp.PowerKW)
		}
	}
	return total
}
