package tariff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/model"
)

func TestPriceWrapsAroundTheDay(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.34, s.Price(0.5))
	assert.Equal(t, 0.40, s.Price(17.2))
	assert.Equal(t, 0.40, s.Price(24+17.2))
	assert.Equal(t, 0.35, s.Price(-0.5))
}

func TestPeriods(t *testing.T) {
	s, err := New([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 2, 1}, s.Periods(0, 0.5, 5))
}

func TestCostSplitsAtHourBoundaries(t *testing.T) {
	s, err := New([]float64{1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*10*1+0.5*10*3, s.Cost(0.5, 1.5, 10), 1e-12)
}

func TestNegativePriceRejected(t *testing.T) {
	_, err := New([]float64{0.3, -1})
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}
