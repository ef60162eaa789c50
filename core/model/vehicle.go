package model

import (
	"fmt"
	"math"

	"github.com/kilianp07/tgcsim/core/chargecurve"
)

// PhaseTolerance is the energy slack in kWh used when deciding whether a
// session crossed its CC/CV breakpoint or reached its target.
const PhaseTolerance = 1e-6

// VehicleState is the lifecycle state of a vehicle.
type VehicleState int

const (
	Arriving VehicleState = iota
	Queued
	ChargingCC
	ChargingCV
	Departed
	Balked
	Reneged
)

// String returns a human-readable representation of the state.
func (s VehicleState) String() string {
	switch s {
	case Arriving:
		return "arriving"
	case Queued:
		return "queued"
	case ChargingCC:
		return "charging_cc"
	case ChargingCV:
		return "charging_cv"
	case Departed:
		return "departed"
	case Balked:
		return "balked"
	case Reneged:
		return "reneged"
	default:
		return "unknown"
	}
}

// Vehicle represents an electric vehicle visiting the hub. Times are in
// simulated hours.
type Vehicle struct {
	ID          string
	Created     float64 // arrival at the hub
	StayHours   float64 // contracted stay once charging starts
	CapacityKWh float64
	InitialSoC  float64
	DesiredSoC  float64
	MaxInputKW  float64
	Decay       float64 // CV decay constant in 1/h
	Breakpoint  float64 // CC/CV transition as a fraction of capacity

	State       VehicleState
	StationID   string // last station used
	ChargeStart float64
	Departure   float64
	Energy      EnergyLog
}

// Validate checks that the vehicle parameters are physically meaningful.
func (v *Vehicle) Validate() error {
	switch {
	case v.CapacityKWh <= 0:
		return fmt.Errorf("vehicle %s: capacity must be positive: %w", v.ID, ErrConfiguration)
	case v.StayHours < 0:
		return fmt.Errorf("vehicle %s: negative stay: %w", v.ID, ErrConfiguration)
	case v.MaxInputKW < 0:
		return fmt.Errorf("vehicle %s: negative max input: %w", v.ID, ErrConfiguration)
	case v.Decay < 0:
		return fmt.Errorf("vehicle %s: negative decay: %w", v.ID, ErrConfiguration)
	case !unit(v.InitialSoC) || !unit(v.DesiredSoC) || !unit(v.Breakpoint):
		return fmt.Errorf("vehicle %s: soc fractions must lie in [0,1]: %w", v.ID, ErrConfiguration)
	}
	return nil
}

// Charging reports whether the vehicle is bound to a station.
func (v *Vehicle) Charging() bool {
	return v.State == ChargingCC || v.State == ChargingCV
}

// Deadline returns the departure instant of the charging session.
func (v *Vehicle) Deadline() float64 { return v.ChargeStart + v.StayHours }

// RequestedKWh returns the energy between the initial and desired state of charge.
func (v *Vehicle) RequestedKWh() float64 {
	return math.Max(v.DesiredSoC-v.InitialSoC, 0) * v.CapacityKWh
}

// RealisticKWh caps the requested energy by what the vehicle can take during its stay.
func (v *Vehicle) RealisticKWh() float64 {
	return math.Min(v.StayHours*v.MaxInputKW, v.RequestedKWh())
}

// BreakpointKWh returns the energy still to deliver before the CV phase starts.
func (v *Vehicle) BreakpointKWh() float64 {
	return math.Max(v.Breakpoint-v.InitialSoC, 0) * v.CapacityKWh
}

// DeliveredKWh returns the energy charged up to now, capped at the request.
func (v *Vehicle) DeliveredKWh(now float64) float64 {
	return math.Min(v.Energy.EnergyAt(now), v.RequestedKWh())
}

// SoC returns the state of charge at now.
func (v *Vehicle) SoC(now float64) float64 {
	if v.CapacityKWh <= 0 {
		return v.InitialSoC
	}
	return math.Min(v.InitialSoC+v.DeliveredKWh(now)/v.CapacityKWh, 1)
}

// RemainingStay returns the stay left at now; the full stay before charging starts.
func (v *Vehicle) RemainingStay(now float64) float64 {
	if !v.Charging() {
		return v.StayHours
	}
	return math.Max(v.Deadline()-now, 0)
}

// ProcessingHours returns the time needed for the requested energy at max input.
func (v *Vehicle) ProcessingHours() float64 {
	return hours(v.RequestedKWh(), v.MaxInputKW)
}

// RemainingChargeHours returns the time needed at max input for the realistic
// energy not delivered yet.
func (v *Vehicle) RemainingChargeHours(now float64) float64 {
	return hours(math.Max(v.RealisticKWh()-v.DeliveredKWh(now), 0), v.MaxInputKW)
}

// Laxity returns the slack between the deadline and the remaining charge time.
func (v *Vehicle) Laxity(now float64) float64 {
	return v.Deadline() - v.RemainingChargeHours(now)
}

// UnmetKWh returns the requested energy not delivered by now.
func (v *Vehicle) UnmetKWh(now float64) float64 {
	return math.Max(v.RequestedKWh()-v.DeliveredKWh(now), 0)
}

// Satisfaction returns the delivered share of the request in percent.
func (v *Vehicle) Satisfaction(now float64) float64 {
	req := v.RequestedKWh()
	if req <= PhaseTolerance {
		return 100
	}
	return 100 * v.DeliveredKWh(now) / req
}

// Done reports whether the request has been delivered.
func (v *Vehicle) Done(now float64) bool {
	return v.UnmetKWh(now) <= PhaseTolerance
}

// PhaseAt derives the charging phase from the delivered energy.
func (v *Vehicle) PhaseAt(now float64) VehicleState {
	if v.DeliveredKWh(now) < v.BreakpointKWh()-PhaseTolerance {
		return ChargingCC
	}
	return ChargingCV
}

// Profile computes the CC/CV plan for the rest of the session on a station
// rated at stationKW.
func (v *Vehicle) Profile(now, stationKW, tol float64) chargecurve.Profile {
	return chargecurve.Compute(chargecurve.Params{
		StayHours:    v.RemainingStay(now),
		SoC:          v.SoC(now),
		DesiredSoC:   v.DesiredSoC,
		CapacityKWh:  v.CapacityKWh,
		VehicleMaxKW: v.MaxInputKW,
		StationMaxKW: stationKW,
		Decay:        v.Decay,
		Breakpoint:   v.Breakpoint,
		Tolerance:    tol,
	})
}

// DemandKW returns the power the vehicle asks for at now: the CC power before
// the breakpoint, the average power of the remaining CV window afterwards.
func (v *Vehicle) DemandKW(now, stationKW, tol float64) float64 {
	if v.Done(now) || v.RemainingStay(now) <= 0 {
		return 0
	}
	prof := v.Profile(now, stationKW, tol)
	if v.PhaseAt(now) == ChargingCC {
		return prof.CC.PowerKW
	}
	return prof.CV.PowerKW
}

func hours(kwh, kw float64) float64 {
	if kwh <= 0 {
		return 0
	}
	if kw <= 0 {
		return math.Inf(1)
	}
	return kwh / kw
}

func unit(f float64) bool { return f >= 0 && f <= 1 }
