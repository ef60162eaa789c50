package dispatch

import (
	"fmt"

	"github.com/kilianp07/tgcsim/core/model"
)

const allocationEpsilon = 1e-9

// Verify checks an allocation against the ceiling and each slot's limit.
func Verify(ceiling float64, slots []Slot, alloc []float64) error {
	if len(alloc) != len(slots) {
		return fmt.Errorf("%d allocations for %d slots: %w", len(alloc), len(slots), model.ErrAllocationInvariant)
	}
	total := 0.0
	for i, s := range slots {
		a := alloc[i]
		if a < -allocationEpsilon {
			return fmt.Errorf("station %s: negative allocation %.6f kW: %w", s.StationID, a, model.ErrAllocationInvariant)
		}
		if a > s.LimitKW()+allocationEpsilon {
			return fmt.Errorf("station %s: %.6f kW above limit %.6f kW: %w", s.StationID, a, s.LimitKW(), model.ErrAllocationInvariant)
		}
		total += a
	}
	if total > ceiling+allocationEpsilon {
		return fmt.Errorf("total %.6f kW above ceiling %.6f kW: %w", total, ceiling, model.ErrAllocationInvariant)
	}
	return nil
}
