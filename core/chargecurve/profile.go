package chargecurve

import (
	"errors"
	"math"
)

// Params describes one charging session at a given instant.
type Params struct {
	StayHours    float64 // remaining stay
	SoC          float64 // current state of charge [0,1]
	DesiredSoC   float64 // desired state of charge at departure [0,1]
	CapacityKWh  float64
	VehicleMaxKW float64
	StationMaxKW float64
	Decay        float64 // CV decay constant k in 1/h
	Breakpoint   float64 // CC/CV transition as a fraction of capacity
	Tolerance    float64 // kWh, DefaultTolerance when zero
}

// Phase is one segment of a charging profile. PowerKW is the average power
// over the segment.
type Phase struct {
	EnergyKWh float64
	Hours     float64
	PowerKW   float64
	Truncated bool
}

// Profile is the two-phase CC/CV plan for the remaining part of a session.
type Profile struct {
	CC        Phase
	CV        Phase
	TargetKWh float64 // energy still requested
	UnmetKWh  float64 // part of the target that does not fit in the stay
	Converged bool
}

// EnergyKWh returns the total deliverable energy.
func (p Profile) EnergyKWh() float64 { return p.CC.EnergyKWh + p.CV.EnergyKWh }

// Hours returns the total charging time of the profile.
func (p Profile) Hours() float64 { return p.CC.Hours + p.CV.Hours }

// Compute derives the CC/CV profile for the given session parameters. It has no
// side effects and never fails: numeric trouble in the CV phase is reported
// through Converged and UnmetKWh.
//
// The CV phase continues the curve from the power already attained: a session
// that has delivered e kWh above the breakpoint restarts the curve at
// pmax - k*e, which is the instantaneous power of an uninterrupted curve at
// that energy.
func Compute(p Params) Profile {
	tol := p.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	prof := Profile{Converged: true}

	capacity := math.Max(p.CapacityKWh, 0)
	current := clamp01(p.SoC) * capacity
	desired := clamp01(p.DesiredSoC) * capacity
	breakpoint := clamp01(p.Breakpoint) * capacity
	pmax := math.Max(math.Min(p.VehicleMaxKW, p.StationMaxKW), 0)
	stay := math.Max(p.StayHours, 0)

	prof.TargetKWh = math.Max(desired-current, 0)
	if prof.TargetKWh <= tol || pmax == 0 {
		prof.UnmetKWh = unmet(prof.TargetKWh, 0, tol)
		return prof
	}

	if need := math.Min(breakpoint, desired) - current; need > 0 {
		h := need / pmax
		if h > stay {
			prof.CC = Phase{EnergyKWh: pmax * stay, Hours: stay, PowerKW: pmax, Truncated: true}
		} else {
			prof.CC = Phase{EnergyKWh: need, Hours: h, PowerKW: pmax}
		}
	}

	left := stay - prof.CC.Hours
	need := desired - math.Max(current, breakpoint)
	if prof.CC.Truncated || need <= 0 || left <= 0 {
		prof.UnmetKWh = unmet(prof.TargetKWh, prof.EnergyKWh(), tol)
		return prof
	}

	k := math.Max(p.Decay, 0)
	attained := pmax - k*math.Max(current-breakpoint, 0)
	if attained <= 0 {
		prof.UnmetKWh = unmet(prof.TargetKWh, prof.EnergyKWh(), tol)
		return prof
	}

	h, err := SolveCV(attained, k, need, tol)
	switch {
	case errors.Is(err, ErrUnreachable):
		h = math.Inf(1)
	case err != nil:
		prof.Converged = false
	}
	if h > left {
		e := CVEnergy(attained, k, left)
		prof.CV = Phase{EnergyKWh: e, Hours: left, PowerKW: e / left, Truncated: true}
	} else if h > 0 {
		prof.CV = Phase{EnergyKWh: need, Hours: h, PowerKW: need / h}
	}
	prof.UnmetKWh = unmet(prof.TargetKWh, prof.EnergyKWh(), tol)
	return prof
}

func unmet(target, delivered, tol float64) float64 {
	if d := target - delivered; d > tol {
		return d
	}
	return 0
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
