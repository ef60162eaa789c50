package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

// JSONLSink writes one JSON document per line: the summary first, then one
// line per power series.
type JSONLSink struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// NewJSONLSink writes to w. It does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: bufio.NewWriter(w)}
}

// OpenJSONLSink appends to the file at path, creating it when missing.
// The path "-" writes to stdout.
func OpenJSONLSink(path string) (*JSONLSink, error) {
	if path == "" || path == "-" {
		return NewJSONLSink(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s := NewJSONLSink(f)
	s.c = f
	return s, nil
}

// Rotation bounds the size of a JSON lines file. Rotated files are kept
// next to it.
type Rotation struct {
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// OpenRotatingJSONLSink writes to path and rotates it once it grows past
// r.MaxSizeMB.
func OpenRotatingJSONLSink(path string, r Rotation) (*JSONLSink, error) {
	if path == "" || path == "-" {
		return nil, fmt.Errorf("rotation needs a file path")
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAgeDays,
		Compress:   r.Compress,
	}
	s := NewJSONLSink(lj)
	s.c = lj
	return s, nil
}

type jsonlRecord struct {
	Type    string              `json:"type"`
	RunID   string              `json:"run_id"`
	Summary *corereport.Summary `json:"summary,omitempty"`
	Series  *corereport.Series  `json:"series,omitempty"`
}

func (s *JSONLSink) write(recs ...jsonlRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// RecordSummary implements Sink.
func (s *JSONLSink) RecordSummary(sum corereport.Summary) error {
	return s.write(jsonlRecord{Type: "summary", RunID: sum.RunID, Summary: &sum})
}

// RecordSeries implements SeriesRecorder.
func (s *JSONLSink) RecordSeries(runID string, series []corereport.Series) error {
	recs := make([]jsonlRecord, len(series))
	for i := range series {
		recs[i] = jsonlRecord{Type: "series", RunID: runID, Series: &series[i]}
	}
	return s.write(recs...)
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
