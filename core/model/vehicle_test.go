package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVehicle() *Vehicle {
	return &Vehicle{
		ID:          "ev1",
		StayHours:   8,
		CapacityKWh: 70,
		InitialSoC:  0.2,
		DesiredSoC:  1,
		MaxInputKW:  7,
		Breakpoint:  0.5,
	}
}

func TestVehicleValidate(t *testing.T) {
	require.NoError(t, testVehicle().Validate())

	v := testVehicle()
	v.CapacityKWh = 0
	assert.True(t, errors.Is(v.Validate(), ErrConfiguration))

	v = testVehicle()
	v.DesiredSoC = 1.2
	assert.True(t, errors.Is(v.Validate(), ErrConfiguration))
}

func TestVehicleDerivedQuantities(t *testing.T) {
	v := testVehicle()
	st := NewStation("se1", 11, true)
	require.NoError(t, st.Bind(v, 2))

	assert.Equal(t, 10.0, v.Deadline())
	assert.InDelta(t, 56, v.RequestedKWh(), 1e-9)
	assert.InDelta(t, 56, v.RealisticKWh(), 1e-9)
	assert.InDelta(t, 21, v.BreakpointKWh(), 1e-9)
	assert.InDelta(t, 8, v.ProcessingHours(), 1e-9)
	assert.Equal(t, ChargingCC, v.State)

	st.SetPower(v, 2, 7)
	assert.InDelta(t, 14, v.DeliveredKWh(4), 1e-9)
	assert.InDelta(t, 0.4, v.SoC(4), 1e-9)
	assert.InDelta(t, 6, v.RemainingStay(4), 1e-9)
	assert.InDelta(t, 6, v.RemainingChargeHours(4), 1e-9)
	assert.InDelta(t, 4, v.Laxity(4), 1e-9)
	assert.InDelta(t, 25, v.Satisfaction(4), 1e-9)
	assert.Equal(t, ChargingCV, v.PhaseAt(5))
}

func TestVehicleSatisfactionWithoutRequest(t *testing.T) {
	v := testVehicle()
	v.InitialSoC = 1
	assert.Equal(t, 100.0, v.Satisfaction(0))
	assert.True(t, v.Done(0))
}

func TestVehicleDeliveredCappedAtRequest(t *testing.T) {
	v := testVehicle()
	st := NewStation("se1", 11, true)
	require.NoError(t, st.Bind(v, 0))
	st.SetPower(v, 0, 7)
	assert.InDelta(t, 56, v.DeliveredKWh(100), 1e-9)
	assert.Equal(t, 1.0, v.SoC(100))
}

func TestVehicleDemandFollowsPhase(t *testing.T) {
	v := testVehicle()
	v.Decay = 0.05
	st := NewStation("se1", 22, true)
	require.NoError(t, st.Bind(v, 0))

	assert.Equal(t, 7.0, v.DemandKW(0, st.RatedKW, 0))

	st.SetPower(v, 0, 7)
	cv := v.DemandKW(3.5, st.RatedKW, 0)
	assert.Greater(t, cv, 0.0)
	assert.Less(t, cv, 7.0)
}

func TestVehicleUnreachableWithoutInput(t *testing.T) {
	v := testVehicle()
	v.MaxInputKW = 0
	assert.True(t, math.IsInf(v.ProcessingHours(), 1))
}
