// Package random builds the samplers for the vehicle and station attributes.
package random

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/tgcsim/core/model"
)

// Attribute keys understood by the generators.
const (
	IAT = "IAT" // inter-arrival time, h
	DUR = "DUR" // stay duration, h
	ISC = "ISC" // initial state of charge
	DSC = "DSC" // desired state of charge
	CAP = "CAP" // battery capacity, kWh
	MPI = "MPI" // vehicle max input, kW
	DEG = "DEG" // CV decay constant, 1/h
	CVP = "CVP" // CC/CV breakpoint, fraction or percent of capacity
	MPO = "MPO" // station max output, kW
)

// Keys lists every attribute key in a fixed order.
var Keys = []string{IAT, DUR, ISC, DSC, CAP, MPI, DEG, CVP, MPO}

// Spec names a distribution and its parameters.
type Spec struct {
	Dist   string    `json:"dist" yaml:"dist"`
	Params []float64 `json:"params" yaml:"params"`
}

// Sampler draws one variate. gonum distuv distributions satisfy it.
type Sampler interface {
	Rand() float64
}

// Constant always returns its value.
type Constant float64

// Rand returns c.
func (c Constant) Rand() float64 { return float64(c) }

type builder func(p []float64, src rand.Source) (Sampler, error)

// distributions maps a name to its builder. Parameters follow numpy: uniform
// (low, high), normal (mean, sd), poisson (lambda), gamma (shape, scale),
// exponential (scale).
var distributions = map[string]builder{
	"constant": func(p []float64, _ rand.Source) (Sampler, error) {
		if err := arity("constant", p, 1); err != nil {
			return nil, err
		}
		return Constant(p[0]), nil
	},
	"uniform": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("uniform", p, 2); err != nil {
			return nil, err
		}
		if p[1] < p[0] {
			return nil, fmt.Errorf("uniform: high %v below low %v: %w", p[1], p[0], model.ErrConfiguration)
		}
		if p[0] == p[1] {
			return Constant(p[0]), nil
		}
		return distuv.Uniform{Min: p[0], Max: p[1], Src: src}, nil
	},
	"normal": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("normal", p, 2); err != nil {
			return nil, err
		}
		if p[1] < 0 {
			return nil, fmt.Errorf("normal: negative sd: %w", model.ErrConfiguration)
		}
		return distuv.Normal{Mu: p[0], Sigma: p[1], Src: src}, nil
	},
	"lognormal": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("lognormal", p, 2); err != nil {
			return nil, err
		}
		if p[1] < 0 {
			return nil, fmt.Errorf("lognormal: negative sigma: %w", model.ErrConfiguration)
		}
		return distuv.LogNormal{Mu: p[0], Sigma: p[1], Src: src}, nil
	},
	"poisson": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("poisson", p, 1); err != nil {
			return nil, err
		}
		if p[0] <= 0 {
			return nil, fmt.Errorf("poisson: lambda must be positive: %w", model.ErrConfiguration)
		}
		return distuv.Poisson{Lambda: p[0], Src: src}, nil
	},
	"gamma": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("gamma", p, 2); err != nil {
			return nil, err
		}
		if p[0] <= 0 || p[1] <= 0 {
			return nil, fmt.Errorf("gamma: shape and scale must be positive: %w", model.ErrConfiguration)
		}
		return distuv.Gamma{Alpha: p[0], Beta: 1 / p[1], Src: src}, nil
	},
	"exponential": func(p []float64, src rand.Source) (Sampler, error) {
		if err := arity("exponential", p, 1); err != nil {
			return nil, err
		}
		if p[0] <= 0 {
			return nil, fmt.Errorf("exponential: scale must be positive: %w", model.ErrConfiguration)
		}
		return distuv.Exponential{Rate: 1 / p[0], Src: src}, nil
	},
}

func arity(name string, p []float64, n int) error {
	if len(p) != n {
		return fmt.Errorf("%s expects %d parameters, got %d: %w", name, n, len(p), model.ErrConfiguration)
	}
	return nil
}

// Names returns the supported distribution names.
func Names() []string {
	out := make([]string, 0, len(distributions))
	for n := range distributions {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// New builds a sampler for spec drawing from src.
func New(spec Spec, src rand.Source) (Sampler, error) {
	b, ok := distributions[strings.ToLower(spec.Dist)]
	if !ok {
		return nil, fmt.Errorf("unknown distribution %q: %w", spec.Dist, model.ErrConfiguration)
	}
	return b(spec.Params, src)
}

// Set holds one sampler per attribute key. Every key draws from its own
// stream so adding a key never shifts the others.
type Set struct {
	samplers map[string]Sampler
}

// NewSet builds samplers for specs seeded from seed. Unknown keys are
// configuration errors.
func NewSet(specs map[string]Spec, seed uint64) (*Set, error) {
	s := &Set{samplers: make(map[string]Sampler, len(specs))}
	for key, spec := range specs {
		idx := indexOf(strings.ToUpper(key))
		if idx < 0 {
			return nil, fmt.Errorf("unknown distribution key %q: %w", key, model.ErrConfiguration)
		}
		smp, err := New(spec, rand.NewPCG(seed, uint64(idx)+1))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.samplers[Keys[idx]] = smp
	}
	return s, nil
}

// Require fails when one of keys has no sampler.
func (s *Set) Require(keys ...string) error {
	for _, k := range keys {
		if _, ok := s.samplers[k]; !ok {
			return fmt.Errorf("missing distribution for %s: %w", k, model.ErrConfiguration)
		}
	}
	return nil
}

// Sample draws from key, or returns def when key is not configured.
func (s *Set) Sample(key string, def float64) float64 {
	smp, ok := s.samplers[key]
	if !ok {
		return def
	}
	return smp.Rand()
}

func indexOf(key string) int {
	for i, k := range Keys {
		if k == key {
			return i
		}
	}
	return -1
}
