// Package export writes run results as delimited text.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kilianp07/tgcsim/core/report"
)

// Options tunes the CSV dialect. The zero value writes comma separated
// values with two decimals.
type Options struct {
	Comma    rune
	Decimals int
}

func (o Options) writer(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	if o.Comma != 0 {
		cw.Comma = o.Comma
	}
	return cw
}

func (o Options) num(f float64) string {
	d := o.Decimals
	if d <= 0 {
		d = 2
	}
	return strconv.FormatFloat(f, 'f', d, 64)
}

// WriteVehicles writes one row per vehicle visit.
func WriteVehicles(w io.Writer, vs []report.VehicleStats, o Options) error {
	cw := o.writer(w)
	if err := cw.Write([]string{"id", "state", "station_id", "arrival", "charge_start", "departure",
		"stay_hours", "requested_kwh", "delivered_kwh", "unmet_kwh", "satisfaction_pct"}); err != nil {
		return err
	}
	for _, v := range vs {
		rec := []string{
			v.ID, v.State, v.StationID,
			o.num(v.Arrival), o.num(v.ChargeStart), o.num(v.Departure), o.num(v.StayHours),
			o.num(v.RequestedKWh), o.num(v.DeliveredKWh), o.num(v.UnmetKWh), o.num(v.Satisfaction),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeries writes the power samples of every series, one row per sample.
func WriteSeries(w io.Writer, series []report.Series, o Options) error {
	cw := o.writer(w)
	if err := cw.Write([]string{"kind", "id", "t", "power_kw"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, smp := range s.Samples {
			if err := cw.Write([]string{s.Kind, s.ID, o.num(smp.At), o.num(smp.PowerKW)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
