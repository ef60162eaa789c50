// Package tariff provides the hourly energy price used by the cost term of
// the LP allocator.
package tariff

import (
	"fmt"
	"math"

	"github.com/kilianp07/tgcsim/core/model"
)

// DefaultPrices is a day-ahead style schedule in EUR/kWh, one entry per hour.
var DefaultPrices = []float64{
	0.34, 0.34, 0.31, 0.31, 0.31, 0.31, 0.34, 0.35,
	0.38, 0.38, 0.36, 0.37, 0.35, 0.34, 0.35, 0.38,
	0.38, 0.40, 0.40, 0.38, 0.37, 0.36, 0.36, 0.35,
}

// Schedule is a repeating schedule of hourly prices.
type Schedule struct {
	prices []float64
}

// New returns a schedule cycling through prices. An empty slice selects
// DefaultPrices.
func New(prices []float64) (*Schedule, error) {
	if len(prices) == 0 {
		prices = DefaultPrices
	}
	for i, p := range prices {
		if p < 0 || math.IsNaN(p) {
			return nil, fmt.Errorf("price %d is %v: %w", i, p, model.ErrConfiguration)
		}
	}
	cp := make([]float64, len(prices))
	copy(cp, prices)
	return &Schedule{prices: cp}, nil
}

// Price returns the price in force at simulated hour at.
func (s *Schedule) Price(at float64) float64 {
	n := len(s.prices)
	i := int(math.Floor(at)) % n
	if i < 0 {
		i += n
	}
	return s.prices[i]
}

// Periods returns the prices for n consecutive periods of length d starting at from.
func (s *Schedule) Periods(from, d float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Price(from + float64(i)*d)
	}
	return out
}

// Cost returns the cost of drawing kw between from and to.
func (s *Schedule) Cost(from, to, kw float64) float64 {
	total := 0.0
	for t := from; t < to; {
		next := math.Min(math.Floor(t)+1, to)
		total += (next - t) * kw * s.Price(t)
		t = next
	}
	return total
}
