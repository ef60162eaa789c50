package dispatch

import (
	"fmt"
	"strings"

	"github.com/kilianp07/tgcsim/core/logger"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/tariff"
)

// Config defines dispatch-related settings.
type Config struct {
	Rule      string   `json:"rule"`
	Allocator string   `json:"allocator"` // greedy or lp
	LP        LPConfig `json:"lp"`
}

// LPConfig tunes the LP allocator horizon and objective weights.
type LPConfig struct {
	Periods     int       `json:"periods"`
	PeriodHours float64   `json:"period_hours"`
	Alpha       float64   `json:"alpha"` // grid utilization
	Beta        float64   `json:"beta"`  // delivered share of the remaining energy
	Gamma       float64   `json:"gamma"` // energy cost
	Prices      []float64 `json:"prices"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Rule == "" {
		c.Rule = "EDF"
	}
	if c.Allocator == "" {
		c.Allocator = "greedy"
	}
	c.LP.SetDefaults()
}

// SetDefaults fills zero values.
func (c *LPConfig) SetDefaults() {
	if c.Periods == 0 {
		c.Periods = 4
	}
	if c.PeriodHours == 0 {
		c.PeriodHours = 0.25
	}
	if c.Alpha == 0 && c.Beta == 0 && c.Gamma == 0 {
		c.Alpha, c.Beta, c.Gamma = 1, 1, 1
	}
}

// Validate checks the rule and allocator names and the LP parameters.
func (c Config) Validate() error {
	if _, err := ParseRule(c.Rule); err != nil {
		return err
	}
	switch strings.ToLower(c.Allocator) {
	case "greedy":
	case "lp":
		if c.LP.Periods <= 0 || c.LP.PeriodHours <= 0 {
			return fmt.Errorf("lp periods and period_hours must be positive: %w", model.ErrConfiguration)
		}
		if c.LP.Alpha < 0 || c.LP.Beta < 0 || c.LP.Gamma < 0 {
			return fmt.Errorf("lp weights must not be negative: %w", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("unknown allocator %q: %w", c.Allocator, model.ErrConfiguration)
	}
	return nil
}

// NewAllocator builds the allocator selected by c.
func NewAllocator(c Config, log logger.Logger) (Allocator, error) {
	switch strings.ToLower(c.Allocator) {
	case "", "greedy":
		return Greedy{}, nil
	case "lp":
		sched, err := tariff.New(c.LP.Prices)
		if err != nil {
			return nil, err
		}
		return NewLPAllocator(c.LP, sched, log), nil
	default:
		return nil, fmt.Errorf("unknown allocator %q: %w", c.Allocator, model.ErrConfiguration)
	}
}
