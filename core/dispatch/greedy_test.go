package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/model"
)

func mixedSlots() []Slot {
	a := slot("a", 0, 4)
	a.RatedKW, a.DemandKW = 11, 7
	b := slot("b", 0, 5)
	b.RatedKW, b.DemandKW = 22, 22
	c := slot("c", 0, 6)
	c.RatedKW, c.DemandKW = 7, 3.5
	off := slot("off", 0, 1)
	off.Connected = false
	idle := Slot{StationID: "idle", Connected: true, RatedKW: 50}
	return []Slot{a, b, c, off, idle}
}

func TestGreedyRespectsCeilingAndLimits(t *testing.T) {
	slots := mixedSlots()
	for _, ceiling := range []float64{0, 5, 7, 20, 29, 32.5, 100} {
		alloc := Greedy{}.Allocate(Request{CeilingKW: ceiling, Slots: slots})
		require.NoError(t, Verify(ceiling, slots, alloc), "ceiling %v", ceiling)
		sum := 0.0
		for i, s := range slots {
			assert.LessOrEqual(t, alloc[i], s.LimitKW())
			sum += alloc[i]
		}
		assert.LessOrEqual(t, sum, ceiling)
	}
}

func TestGreedyWaterFill(t *testing.T) {
	alloc := Greedy{}.Allocate(Request{CeilingKW: 20, Slots: mixedSlots()})
	assert.Equal(t, []float64{7, 13, 0, 0, 0}, alloc)
}

func TestGreedyMonotoneInCeiling(t *testing.T) {
	slots := mixedSlots()
	prev := Greedy{}.Allocate(Request{CeilingKW: 0, Slots: slots})
	for c := 0.5; c <= 40; c += 0.5 {
		cur := Greedy{}.Allocate(Request{CeilingKW: c, Slots: slots})
		for i := range cur {
			assert.GreaterOrEqual(t, cur[i], prev[i], "slot %d at ceiling %v", i, c)
		}
		prev = cur
	}
}

func TestScenarioTwoVehiclesOneCeiling(t *testing.T) {
	early := slot("se1", 0, 4)
	late := slot("se2", 0, 8)
	rule, err := ParseRule("EDF")
	require.NoError(t, err)
	d := New(rule, Greedy{}, 7, nil)

	res, err := d.Cycle(0, []Slot{late, early})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.PowerFor("se1"))
	assert.Equal(t, 0.0, res.PowerFor("se2"))
	assert.Equal(t, 7.0, res.TotalKW)
	assert.Equal(t, 1, d.Cycles())
}

func TestVerifyDetectsViolations(t *testing.T) {
	slots := mixedSlots()
	err := Verify(10, slots, []float64{7, 7, 0, 0, 0})
	assert.True(t, errors.Is(err, model.ErrAllocationInvariant))

	err = Verify(100, slots, []float64{8, 0, 0, 0, 0})
	assert.True(t, errors.Is(err, model.ErrAllocationInvariant))

	err = Verify(100, slots, []float64{0, 0, 0, 1, 0})
	assert.True(t, errors.Is(err, model.ErrAllocationInvariant))

	err = Verify(100, slots, []float64{0})
	assert.True(t, errors.Is(err, model.ErrAllocationInvariant))
}

type overAllocator struct{}

func (overAllocator) Name() string { return "over" }
func (overAllocator) Allocate(req Request) []float64 {
	out := make([]float64, len(req.Slots))
	for i := range out {
		out[i] = req.CeilingKW
	}
	return out
}

func TestCycleReportsInvariantViolation(t *testing.T) {
	rule, _ := ParseRule("FIFO")
	d := New(rule, overAllocator{}, 7, nil)
	_, err := d.Cycle(0, []Slot{slot("a", 0, 1), slot("b", 0, 1)})
	assert.True(t, errors.Is(err, model.ErrAllocationInvariant))
}
