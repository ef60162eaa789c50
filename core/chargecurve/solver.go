package chargecurve

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnreachable indicates the requested CV energy lies beyond the curve asymptote.
	ErrUnreachable = errors.New("energy unreachable on cv curve")
	// ErrNoConvergence indicates the CV root finder ran out of iterations.
	ErrNoConvergence = errors.New("cv root finding did not converge")
)

// DefaultTolerance is the energy tolerance in kWh used by SolveCV when none is given.
const DefaultTolerance = 1e-3

const maxIterations = 100

// CVPower returns the instantaneous power after t hours on a CV curve that
// started at pmax kW with decay constant k (1/h).
func CVPower(pmax, k, t float64) float64 {
	if k == 0 {
		return pmax
	}
	return pmax * math.Exp(-k*t)
}

// CVEnergy returns the energy in kWh delivered over [0, t] on a CV curve.
// A zero decay constant degenerates to constant power.
func CVEnergy(pmax, k, t float64) float64 {
	if t <= 0 || pmax <= 0 {
		return 0
	}
	if k == 0 {
		return pmax * t
	}
	return pmax / k * (1 - math.Exp(-k*t))
}

// SolveCV returns the time in hours needed to deliver energy kWh on a CV curve
// starting at pmax with decay k. The equation is solved with Newton steps kept
// inside a bisection bracket until the energy residual is within tol.
//
// ErrUnreachable is returned when the asymptote pmax/k lies at or below the
// requested energy. ErrNoConvergence is returned together with the best
// estimate when the iteration budget runs out.
func SolveCV(pmax, k, energy, tol float64) (float64, error) {
	return solveCV(pmax, k, energy, tol, maxIterations)
}

// solveCV is SolveCV with an explicit budget for both the bracket expansion
// and the refinement loop.
func solveCV(pmax, k, energy, tol float64, budget int) (float64, error) {
	if energy <= 0 {
		return 0, nil
	}
	if pmax <= 0 {
		return 0, fmt.Errorf("cv solve with %.3f kW: %w", pmax, ErrUnreachable)
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if k == 0 {
		return energy / pmax, nil
	}
	if energy >= pmax/k {
		return 0, fmt.Errorf("cv solve %.3f kWh above asymptote %.3f kWh: %w", energy, pmax/k, ErrUnreachable)
	}

	f := func(t float64) float64 { return CVEnergy(pmax, k, t) - energy }

	// Average power on the curve is below pmax so energy/pmax never overshoots.
	lo := energy / pmax
	hi := 2 * lo
	for i := 0; f(hi) < 0; i++ {
		if i == budget {
			return hi, fmt.Errorf("cv bracket for %.3f kWh: %w", energy, ErrNoConvergence)
		}
		lo = hi
		hi *= 2
	}

	t := lo
	for i := 0; i < budget; i++ {
		r := f(t)
		if math.Abs(r) <= tol {
			return t, nil
		}
		if r < 0 {
			lo = t
		} else {
			hi = t
		}
		next := t - r/CVPower(pmax, k, t)
		if next <= lo || next >= hi || math.IsNaN(next) {
			next = (lo + hi) / 2
		}
		t = next
	}
	return t, fmt.Errorf("cv solve %.3f kWh after %d iterations: %w", energy, budget, ErrNoConvergence)
}
