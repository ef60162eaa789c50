package report

import "errors"

// MultiSink fans the summary out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSummary forwards the summary to all sinks and joins their errors.
func (m *MultiSink) RecordSummary(s Summary) error {
	var errs []error
	for _, sk := range m.Sinks {
		if err := sk.RecordSummary(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSeries forwards the series to the sinks supporting it.
func (m *MultiSink) RecordSeries(runID string, series []Series) error {
	var errs []error
	for _, sk := range m.Sinks {
		if rec, ok := sk.(SeriesRecorder); ok {
			if err := rec.RecordSeries(runID, series); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks holding resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, sk := range m.Sinks {
		if c, ok := sk.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Publish records s on sink, including the series when supported.
func Publish(sink Sink, s Summary) error {
	if err := sink.RecordSummary(s); err != nil {
		return err
	}
	if rec, ok := sink.(SeriesRecorder); ok {
		return rec.RecordSeries(s.RunID, s.Series)
	}
	return nil
}
