// Package report provides the concrete result sinks: Prometheus, InfluxDB,
// JSON lines, CSV, SQLite and MQTT.
package report

import (
	"github.com/kilianp07/tgcsim/core/factory"
	corereport "github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/infra/mqtt"
)

// init registers built-in sinks.
func init() {
	_ = corereport.RegisterSink("nop", func(map[string]any) (corereport.Sink, error) {
		return corereport.NopSink{}, nil
	})

	_ = corereport.RegisterSink("prometheus", func(map[string]any) (corereport.Sink, error) {
		return NewPromSink()
	})

	_ = corereport.RegisterSink("influx", func(conf map[string]any) (corereport.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = corereport.RegisterSink("jsonl", func(conf map[string]any) (corereport.Sink, error) {
		var c struct {
			Path     string `json:"path"`
			Rotation `json:",squash"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.MaxSizeMB > 0 {
			return OpenRotatingJSONLSink(c.Path, c.Rotation)
		}
		return OpenJSONLSink(c.Path)
	})

	_ = corereport.RegisterSink("csv", func(conf map[string]any) (corereport.Sink, error) {
		var c struct {
			Dir       string `json:"dir"`
			Separator string `json:"separator"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var comma rune
		if c.Separator != "" {
			comma = []rune(c.Separator)[0]
		}
		return NewCSVSink(c.Dir, comma)
	})

	_ = corereport.RegisterSink("sqlite", func(conf map[string]any) (corereport.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "tgcsim.db"
		}
		return NewSQLiteStore(c.Path)
	})

	_ = corereport.RegisterSink("mqtt", func(conf map[string]any) (corereport.Sink, error) {
		var c struct {
			mqtt.Config `json:",squash"`
			Prefix      string `json:"topic_prefix"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		cli, err := mqtt.NewPahoClient(c.Config)
		if err != nil {
			return nil, err
		}
		s := NewMQTTSink(cli, c.Prefix)
		s.close = cli.Disconnect
		return s, nil
	})
}
