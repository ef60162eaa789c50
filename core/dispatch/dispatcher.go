// Package dispatch ranks the charging sessions and splits the grid ceiling
// among them once per cycle.
package dispatch

import (
	"github.com/kilianp07/tgcsim/core/logger"
)

// Dispatcher holds the per run allocation policy.
type Dispatcher struct {
	Rule      Rule
	Allocator Allocator
	CeilingKW float64

	log    logger.Logger
	cycles int
}

// Result is the outcome of one cycle. PowerKW is aligned with Ranked.
type Result struct {
	Ranked  []Slot
	PowerKW []float64
	TotalKW float64
}

// PowerFor returns the allocation of station id, zero when absent.
func (r Result) PowerFor(id string) float64 {
	for i, s := range r.Ranked {
		if s.StationID == id {
			return r.PowerKW[i]
		}
	}
	return 0
}

// New returns a dispatcher. A nil allocator selects Greedy.
func New(rule Rule, alloc Allocator, ceilingKW float64, log logger.Logger) *Dispatcher {
	if alloc == nil {
		alloc = Greedy{}
	}
	return &Dispatcher{Rule: rule, Allocator: alloc, CeilingKW: ceilingKW, log: logger.OrNop(log)}
}

// Cycles returns the number of cycles run.
func (d *Dispatcher) Cycles() int { return d.cycles }

// Cycle ranks slots, allocates the ceiling and checks the result. An error
// wraps model.ErrAllocationInvariant.
func (d *Dispatcher) Cycle(now float64, slots []Slot) (Result, error) {
	ranked := d.Rule.Rank(slots)
	alloc := d.Allocator.Allocate(Request{Now: now, CeilingKW: d.CeilingKW, Slots: ranked})
	res := Result{Ranked: ranked, PowerKW: alloc}
	if err := Verify(d.CeilingKW, ranked, alloc); err != nil {
		return res, err
	}
	active := 0
	for i, s := range ranked {
		res.TotalKW += alloc[i]
		if s.Active() {
			active++
		}
	}
	d.cycles++
	dispatchCycles.WithLabelValues(d.Rule.Name, d.Allocator.Name()).Inc()
	allocatedPower.Set(res.TotalKW)
	unallocatedPower.Set(d.CeilingKW - res.TotalKW)
	activeSessions.Set(float64(active))
	d.log.Debugw("dispatch cycle", map[string]any{
		"t":        now,
		"rule":     d.Rule.Name,
		"active":   active,
		"total_kw": res.TotalKW,
	})
	return res, nil
}
