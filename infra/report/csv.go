package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	corereport "github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/pkg/export"
)

// CSVSink writes <run>_vehicles.csv and <run>_series.csv into a directory.
type CSVSink struct {
	Dir  string
	opts export.Options
}

// NewCSVSink creates dir when missing. comma defaults to ';'.
func NewCSVSink(dir string, comma rune) (*CSVSink, error) {
	if dir == "" {
		dir = "."
	}
	if comma == 0 {
		comma = ';'
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv sink: %w", err)
	}
	return &CSVSink{Dir: dir, opts: export.Options{Comma: comma, Decimals: 2}}, nil
}

func (s *CSVSink) create(runID, suffix string, write func(f *os.File) error) (err error) {
	f, err := os.Create(filepath.Join(s.Dir, fmt.Sprintf("%s_%s.csv", runID, suffix)))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return write(f)
}

// RecordSummary writes the vehicle table.
func (s *CSVSink) RecordSummary(sum corereport.Summary) error {
	return s.create(sum.RunID, "vehicles", func(f *os.File) error {
		return export.WriteVehicles(f, sum.Vehicles, s.opts)
	})
}

// RecordSeries writes the power series.
func (s *CSVSink) RecordSeries(runID string, series []corereport.Series) error {
	return s.create(runID, "series", func(f *os.File) error {
		return export.WriteSeries(f, series, s.opts)
	})
}
