package dispatch

import "math"

// Slot is the dispatcher's view of one station during a cycle. Times are
// absolute simulated hours.
type Slot struct {
	StationID string
	VehicleID string
	Connected bool
	RatedKW   float64

	Arrival              float64 // charge start
	Deadline             float64
	ProcessingHours      float64
	RemainingChargeHours float64
	Laxity               float64
	DemandKW             float64
	RemainingKWh         float64
}

// Bound reports whether a vehicle occupies the station.
func (s Slot) Bound() bool { return s.VehicleID != "" }

// Active reports whether the slot may receive power.
func (s Slot) Active() bool { return s.Connected && s.Bound() }

// LimitKW returns the most the slot can take: the station rating capped by
// the vehicle demand, zero for inactive slots.
func (s Slot) LimitKW() float64 {
	if !s.Active() {
		return 0
	}
	return math.Max(math.Min(s.RatedKW, s.DemandKW), 0)
}
