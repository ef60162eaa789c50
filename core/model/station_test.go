package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationSetPowerClamps(t *testing.T) {
	st := NewStation("se1", 11, true)
	v := testVehicle()
	require.NoError(t, st.Bind(v, 0))
	assert.Equal(t, 11.0, st.SetPower(v, 0, 20))
	assert.Equal(t, 0.0, st.SetPower(v, 1, -3))
	assert.InDelta(t, 11, v.Energy.Energy(), 1e-12)
}

func TestStationDisconnectedDeliversNothing(t *testing.T) {
	st := NewStation("se1", 11, false)
	v := testVehicle()
	require.NoError(t, st.Bind(v, 0))
	assert.Equal(t, 0.0, st.SetPower(v, 0, 5))
}

func TestStationBindUnbind(t *testing.T) {
	st := NewStation("se1", 11, true)
	v := testVehicle()
	require.NoError(t, st.Bind(v, 1))
	assert.Error(t, st.Bind(testVehicle(), 1))
	assert.Equal(t, "se1", v.StationID)
	assert.True(t, st.Bound())

	st.SetPower(v, 1, 7)
	st.Unbind(v, 3)
	assert.False(t, st.Bound())
	assert.Equal(t, Departed, v.State)
	assert.Equal(t, "se1", v.StationID, "the last station stays on record")
	assert.Equal(t, 3.0, v.Departure)
	assert.Equal(t, 2.0, st.BoundHours)
	assert.Equal(t, 1, st.Sessions)
	assert.InDelta(t, 14, st.Energy.Energy(), 1e-12)
	assert.InDelta(t, 14, v.Energy.Energy(), 1e-12)
}
