package model

import (
	"fmt"
	"math"
)

// Station is one charging point behind the shared grid connection.
type Station struct {
	ID        string
	RatedKW   float64
	Connected bool // fixed at creation

	VehicleID  string
	PowerKW    float64
	Energy     EnergyLog
	Sessions   int
	BoundHours float64
}

// NewStation returns an idle station with an empty energy log starting at 0.
func NewStation(id string, ratedKW float64, connected bool) *Station {
	s := &Station{ID: id, RatedKW: ratedKW, Connected: connected}
	s.Energy.Reset(0)
	return s
}

// Validate checks the station rating.
func (s *Station) Validate() error {
	if s.RatedKW < 0 || math.IsNaN(s.RatedKW) {
		return fmt.Errorf("station %s: rated power must not be negative: %w", s.ID, ErrConfiguration)
	}
	return nil
}

// Bound reports whether a vehicle occupies the station.
func (s *Station) Bound() bool { return s.VehicleID != "" }

// Bind attaches v, stamps its charge start and starts its energy log.
func (s *Station) Bind(v *Vehicle, now float64) error {
	if s.Bound() {
		return fmt.Errorf("station %s already bound to %s", s.ID, s.VehicleID)
	}
	s.VehicleID = v.ID
	s.Sessions++
	v.StationID = s.ID
	v.ChargeStart = now
	v.Energy.Reset(now)
	v.State = v.PhaseAt(now)
	return nil
}

// Unbind zeroes the power, stamps the departure and releases the vehicle.
func (s *Station) Unbind(v *Vehicle, now float64) {
	s.SetPower(v, now, 0)
	v.Energy.Finalize(now)
	s.BoundHours += now - v.ChargeStart
	v.Departure = now
	v.State = Departed
	s.VehicleID = ""
}

// SetPower clamps kw to the station rating, applies it to the station and the
// bound vehicle and returns the applied value. Disconnected stations always
// deliver zero.
func (s *Station) SetPower(v *Vehicle, now, kw float64) float64 {
	kw = math.Min(math.Max(kw, 0), s.RatedKW)
	if !s.Connected {
		kw = 0
	}
	s.PowerKW = kw
	s.Energy.Record(now, kw)
	if v != nil {
		v.Energy.Record(now, kw)
	}
	return kw
}
