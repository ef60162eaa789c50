package dispatch

import "math"

// Request is the input of one allocation cycle. Slots are in ranked order.
type Request struct {
	Now       float64
	CeilingKW float64
	Slots     []Slot
}

// Allocator splits the grid ceiling among ranked slots. The result is aligned
// with req.Slots.
type Allocator interface {
	Allocate(req Request) []float64
	Name() string
}

// Greedy is the single pass water-fill: each slot in rank order takes as much
// of the remaining ceiling as its station rating and vehicle demand allow.
type Greedy struct{}

// Name returns "greedy".
func (Greedy) Name() string { return "greedy" }

// Allocate implements Allocator.
func (Greedy) Allocate(req Request) []float64 {
	return waterFill(req.CeilingKW, req.Slots, nil)
}

// waterFill runs the greedy pass. caps, when non-nil, further limits each slot.
func waterFill(ceiling float64, slots []Slot, caps []float64) []float64 {
	alloc := make([]float64, len(slots))
	remaining := math.Max(ceiling, 0)
	for i, s := range slots {
		limit := s.LimitKW()
		if caps != nil {
			limit = math.Min(limit, math.Max(caps[i], 0))
		}
		a := math.Min(limit, remaining)
		alloc[i] = a
		remaining = math.Max(remaining-a, 0)
	}
	return alloc
}
