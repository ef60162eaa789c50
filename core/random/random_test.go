package random

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/tgcsim/core/model"
)

func TestNewUnknownDistribution(t *testing.T) {
	_, err := New(Spec{Dist: "weibull", Params: []float64{1}}, rand.NewPCG(1, 1))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestNewWrongArity(t *testing.T) {
	_, err := New(Spec{Dist: "uniform", Params: []float64{1}}, rand.NewPCG(1, 1))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestDegenerateUniformIsConstant(t *testing.T) {
	s, err := New(Spec{Dist: "uniform", Params: []float64{70, 70}}, rand.NewPCG(1, 1))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 70.0, s.Rand())
	}
}

func TestExponentialUsesScale(t *testing.T) {
	s, err := New(Spec{Dist: "exponential", Params: []float64{8}}, rand.NewPCG(7, 7))
	require.NoError(t, err)
	xs := make([]float64, 20000)
	for i := range xs {
		xs[i] = s.Rand()
	}
	assert.InDelta(t, 8, stat.Mean(xs, nil), 0.3)
}

func TestGammaUsesScale(t *testing.T) {
	s, err := New(Spec{Dist: "gamma", Params: []float64{2, 3}}, rand.NewPCG(7, 7))
	require.NoError(t, err)
	xs := make([]float64, 20000)
	for i := range xs {
		xs[i] = s.Rand()
	}
	assert.InDelta(t, 6, stat.Mean(xs, nil), 0.3)
}

func TestSetDeterministic(t *testing.T) {
	specs := map[string]Spec{
		IAT: {Dist: "exponential", Params: []float64{0.5}},
		DUR: {Dist: "normal", Params: []float64{8, 1}},
	}
	a, err := NewSet(specs, 4343)
	require.NoError(t, err)
	b, err := NewSet(specs, 4343)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Sample(IAT, 0), b.Sample(IAT, 0))
		assert.Equal(t, a.Sample(DUR, 0), b.Sample(DUR, 0))
	}
	assert.Equal(t, 42.0, a.Sample(CAP, 42))
	assert.Error(t, a.Require(IAT, CAP))
	assert.NoError(t, a.Require(IAT, DUR))
}

func TestSetUnknownKey(t *testing.T) {
	_, err := NewSet(map[string]Spec{"ENX": {Dist: "constant", Params: []float64{1}}}, 1)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}
