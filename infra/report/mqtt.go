package report

import (
	"encoding/json"
	"fmt"
	"strings"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTSink publishes the summary to <prefix>/<run id>/summary and each power
// series to <prefix>/<run id>/series/<kind>/<id>.
type MQTTSink struct {
	pub    Publisher
	prefix string
	close  func()
}

// NewMQTTSink publishes through pub under prefix, "tgcsim" when empty.
func NewMQTTSink(pub Publisher, prefix string) *MQTTSink {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "tgcsim"
	}
	return &MQTTSink{pub: pub, prefix: prefix}
}

// RecordSummary implements Sink.
func (s *MQTTSink) RecordSummary(sum corereport.Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.pub.Publish(fmt.Sprintf("%s/%s/summary", s.prefix, sum.RunID), payload)
}

// RecordSeries implements SeriesRecorder.
func (s *MQTTSink) RecordSeries(runID string, series []corereport.Series) error {
	for _, sr := range series {
		payload, err := json.Marshal(sr.Samples)
		if err != nil {
			return err
		}
		topic := fmt.Sprintf("%s/%s/series/%s/%s", s.prefix, runID, sr.Kind, sr.ID)
		if err := s.pub.Publish(topic, payload); err != nil {
			return err
		}
	}
	return nil
}

// Close disconnects the client when the sink owns it.
func (s *MQTTSink) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
