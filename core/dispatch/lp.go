package dispatch

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/tgcsim/core/logger"
	"github.com/kilianp07/tgcsim/core/tariff"
)

// ErrEmptyProblem is returned for a problem without sessions or periods.
var ErrEmptyProblem = errors.New("lp problem has no sessions or periods")

// Problem is the multi-period allocation handed to an Optimizer.
type Problem struct {
	MaxKW        *mat.Dense // sessions x periods
	RemainingKWh []float64  // per session
	CeilingKW    []float64  // per period
	Prices       []float64  // per period, EUR/kWh
	PeriodHours  []float64
	Alpha        float64
	Beta         float64
	Gamma        float64
}

// Optimizer returns a feasible sessions x periods power matrix for p.
type Optimizer interface {
	Optimize(p Problem) (*mat.Dense, error)
}

// lpSolve points to the function used to solve the LP. It can be overridden in
// tests to simulate solver failures.
var lpSolve = lp.Simplex

// SimplexOptimizer solves Problem with the gonum simplex implementation.
//
// The objective rewards early grid utilization (alpha, weighted towards the
// first period), the delivered share of every session's remaining energy
// (beta) and penalizes the energy cost normalized by the cost of running at
// the ceiling for the whole horizon (gamma).
type SimplexOptimizer struct {
	Tol float64
}

// Optimize implements Optimizer.
func (o SimplexOptimizer) Optimize(p Problem) (*mat.Dense, error) {
	if p.MaxKW == nil {
		return nil, ErrEmptyProblem
	}
	ns, np := p.MaxKW.Dims()
	if ns == 0 || np == 0 {
		return nil, ErrEmptyProblem
	}
	if len(p.RemainingKWh) != ns || len(p.CeilingKW) != np || len(p.Prices) != np || len(p.PeriodHours) != np {
		return nil, fmt.Errorf("lp problem dimensions mismatch for %dx%d", ns, np)
	}
	tol := o.Tol
	if tol <= 0 {
		tol = 1e-9
	}

	// Standard form: [G I] [x s]^T = h with x, s >= 0. Rows are the session
	// energy limits, the per cell power bounds and the per period ceilings.
	nv := ns * np
	rows := ns + nv + np
	cols := nv + rows
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	norm := 0.0
	for j := 0; j < np; j++ {
		norm += p.Prices[j] * p.PeriodHours[j] * p.CeilingKW[j]
	}
	if norm <= 0 {
		norm = 1
	}

	for i := 0; i < ns; i++ {
		b[i] = nonNeg(p.RemainingKWh[i])
		for j := 0; j < np; j++ {
			v := i*np + j
			w := float64(np-j) / float64(np)
			if p.CeilingKW[j] > 0 {
				c[v] -= p.Alpha * w / p.CeilingKW[j]
			}
			if p.RemainingKWh[i] > 0 {
				c[v] -= p.Beta * p.PeriodHours[j] / (p.RemainingKWh[i] * float64(ns))
			}
			c[v] += p.Gamma * p.Prices[j] * p.PeriodHours[j] / norm

			a.Set(i, v, p.PeriodHours[j])
			a.Set(ns+v, v, 1)
			b[ns+v] = nonNeg(p.MaxKW.At(i, j))
			a.Set(ns+nv+j, v, 1)
		}
	}
	for j := 0; j < np; j++ {
		b[ns+nv+j] = nonNeg(p.CeilingKW[j])
	}
	for r := 0; r < rows; r++ {
		a.Set(r, nv+r, 1)
	}

	_, x, err := lpSolve(c, a, b, tol, nil)
	if err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	out := mat.NewDense(ns, np, nil)
	for i := 0; i < ns; i++ {
		for j := 0; j < np; j++ {
			out.Set(i, j, x[i*np+j])
		}
	}
	return out, nil
}

func nonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// LPAllocator delegates each cycle to an Optimizer over a short rolling
// horizon and applies only the first period. Solver failures fall back to the
// greedy pass.
type LPAllocator struct {
	Optimizer Optimizer
	Config    LPConfig
	Tariff    *tariff.Schedule
	Fallback  Allocator

	log       logger.Logger
	fallbacks int
}

// NewLPAllocator returns an allocator backed by SimplexOptimizer.
func NewLPAllocator(cfg LPConfig, sched *tariff.Schedule, log logger.Logger) *LPAllocator {
	cfg.SetDefaults()
	if sched == nil {
		sched, _ = tariff.New(nil)
	}
	return &LPAllocator{
		Optimizer: SimplexOptimizer{},
		Config:    cfg,
		Tariff:    sched,
		Fallback:  Greedy{},
		log:       logger.OrNop(log),
	}
}

// Name returns "lp".
func (a *LPAllocator) Name() string { return "lp" }

// Fallbacks returns how many cycles used the fallback allocator.
func (a *LPAllocator) Fallbacks() int { return a.fallbacks }

// Allocate implements Allocator.
func (a *LPAllocator) Allocate(req Request) []float64 {
	alloc, err := a.AllocateStrict(req)
	if err != nil {
		a.fallbacks++
		lpFallbacks.Inc()
		a.log.Warnf("lp allocation failed at t=%.3fh, using %s: %v", req.Now, a.Fallback.Name(), err)
		return a.Fallback.Allocate(req)
	}
	return alloc
}

// AllocateStrict solves the LP and returns an error instead of falling back.
func (a *LPAllocator) AllocateStrict(req Request) ([]float64, error) {
	var active []int
	for i, s := range req.Slots {
		if s.Active() {
			active = append(active, i)
		}
	}
	if len(active) == 0 || req.CeilingKW <= 0 {
		return make([]float64, len(req.Slots)), nil
	}

	np := a.Config.Periods
	pt := a.Config.PeriodHours
	prob := Problem{
		MaxKW:        mat.NewDense(len(active), np, nil),
		RemainingKWh: make([]float64, len(active)),
		CeilingKW:    make([]float64, np),
		Prices:       a.Tariff.Periods(req.Now, pt, np),
		PeriodHours:  make([]float64, np),
		Alpha:        a.Config.Alpha,
		Beta:         a.Config.Beta,
		Gamma:        a.Config.Gamma,
	}
	for j := 0; j < np; j++ {
		prob.CeilingKW[j] = req.CeilingKW
		prob.PeriodHours[j] = pt
	}
	for k, i := range active {
		s := req.Slots[i]
		prob.RemainingKWh[k] = s.RemainingKWh
		for j := 0; j < np; j++ {
			if req.Now+float64(j)*pt < s.Deadline {
				prob.MaxKW.Set(k, j, s.LimitKW())
			}
		}
	}

	sol, err := a.Optimizer.Optimize(prob)
	if err != nil {
		return nil, err
	}
	caps := make([]float64, len(req.Slots))
	for k, i := range active {
		caps[i] = sol.At(k, 0)
	}
	return waterFill(req.CeilingKW, req.Slots, caps), nil
}
