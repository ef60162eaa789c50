package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/report"
)

func TestWriteVehicles(t *testing.T) {
	var buf bytes.Buffer
	vs := []report.VehicleStats{{
		ID: "ev1", State: "departed", StationID: "se1", Arrival: 0.5, ChargeStart: 0.5, Departure: 3,
		StayHours: 2.5, RequestedKWh: 20, DeliveredKWh: 15, UnmetKWh: 5, Satisfaction: 75,
	}}
	require.NoError(t, WriteVehicles(&buf, vs, Options{}))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "ev1,departed,se1,0.50,0.50,3.00,2.50,20.00,15.00,5.00,75.00", string(lines[1]))
}

func TestWriteSeriesSemicolon(t *testing.T) {
	var buf bytes.Buffer
	series := []report.Series{{Kind: "grid", ID: "grid", Samples: []model.Sample{{At: 0, PowerKW: 7}, {At: 1.25, PowerKW: 3.333}}}}
	require.NoError(t, WriteSeries(&buf, series, Options{Comma: ';', Decimals: 3}))
	assert.Equal(t, "kind;id;t;power_kw\ngrid;grid;0.000;7.000\ngrid;grid;1.250;3.333\n", buf.String())
}
