package report

import "github.com/kilianp07/tgcsim/core/factory"

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkNames lists the registered sink types.
func SinkNames() []string { return sinkRegistry.Names() }

// NewSink creates a Sink from the provided configuration.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]Sink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			for _, prev := range sinks[:i] {
				if cl, ok := prev.(Closer); ok {
					_ = cl.Close()
				}
			}
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

// Config defines settings for report sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}
