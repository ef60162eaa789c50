// Package app assembles a hub simulation from the configuration and
// publishes its results.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/tgcsim/config"
	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/hub"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/random"
	"github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/infra/logger"
	_ "github.com/kilianp07/tgcsim/infra/report" // sink factories
	"github.com/kilianp07/tgcsim/internal/eventbus"
)

// Service runs one simulation.
type Service struct {
	Hub      *hub.Hub
	Stations []*model.Station

	sink  report.Sink
	bus   *eventbus.TypedBus[hub.Event]
	trace io.Writer
	log   logger.Logger
}

type options struct {
	logOut io.Writer
	trace  io.Writer
	sink   report.Sink
	runID  string
}

// Option customizes a Service.
type Option func(*options)

// WithLogOutput redirects the logs, stderr by default.
func WithLogOutput(w io.Writer) Option { return func(o *options) { o.logOut = w } }

// WithTrace writes every simulation event to w as one JSON object per line.
func WithTrace(w io.Writer) Option { return func(o *options) { o.trace = w } }

// WithSink replaces the sinks of the configuration.
func WithSink(s report.Sink) Option { return func(o *options) { o.sink = s } }

// WithRunID fixes the run identifier.
func WithRunID(id string) Option { return func(o *options) { o.runID = id } }

// New builds the stations, the arrival source, the dispatcher and the hub.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{logOut: os.Stderr}
	for _, fn := range opts {
		fn(&o)
	}
	logg, err := logger.NewWithConfig("hub", cfg.Logging, o.logOut)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	set, err := random.NewSet(cfg.Distributions, cfg.Simulation.Seed)
	if err != nil {
		return nil, err
	}
	if err := set.Require(random.MPO); err != nil {
		return nil, err
	}
	stations := buildStations(cfg.Simulation.StationLayout(), set)

	src, err := arrivals(cfg.Simulation.Scenario, set)
	if err != nil {
		return nil, err
	}

	rule, err := dispatch.ParseRule(cfg.Dispatch.Rule)
	if err != nil {
		return nil, err
	}
	alloc, err := dispatch.NewAllocator(cfg.Dispatch, logg)
	if err != nil {
		return nil, fmt.Errorf("allocator: %w", err)
	}
	ceiling := hub.GridCeiling(stations, cfg.Simulation.GridMultiplier, cfg.Simulation.GridCeilingKW)
	d := dispatch.New(rule, alloc, ceiling, logg)

	s := &Service{Stations: stations, sink: o.sink, trace: o.trace, log: logg}
	hubOpts := []hub.Option{hub.WithLogger(logg)}
	if o.runID != "" {
		hubOpts = append(hubOpts, hub.WithRunID(o.runID))
	}
	if o.trace != nil {
		s.bus = eventbus.NewTyped[hub.Event](eventbus.WithBuffer(64), eventbus.WithBlocking())
		hubOpts = append(hubOpts, hub.WithEventBus(s.bus))
	}
	s.Hub, err = hub.New(cfg.Simulation.Hub(), stations, src, d, hubOpts...)
	if err != nil {
		return nil, fmt.Errorf("hub: %w", err)
	}

	if s.sink == nil {
		s.sink, err = report.NewSink(cfg.Report.Sinks)
		if err != nil {
			return nil, fmt.Errorf("report sink: %w", err)
		}
	}
	return s, nil
}

// buildStations names the stations se1..seN and draws their rating from MPO.
func buildStations(layout []bool, set *random.Set) []*model.Station {
	out := make([]*model.Station, len(layout))
	for i, connected := range layout {
		out[i] = model.NewStation(fmt.Sprintf("se%d", i+1), max(set.Sample(random.MPO, 0), 0), connected)
	}
	return out
}

func arrivals(scenario string, set *random.Set) (hub.ArrivalSource, error) {
	if scenario == "" {
		return hub.NewRandomArrivals(set)
	}
	f, err := os.Open(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()
	return hub.LoadScenario(f)
}

// Run executes the simulation and publishes its summary. The summary is
// returned even when the run stops early; it is only published on success.
func (s *Service) Run(ctx context.Context) (report.Summary, error) {
	var g errgroup.Group
	if s.bus != nil {
		events := s.bus.Subscribe()
		g.Go(func() error { return writeTrace(s.trace, events) })
	}
	runErr := s.Hub.Run(ctx)
	if s.bus != nil {
		s.bus.Close()
	}
	traceErr := g.Wait()

	sum := s.Hub.Summary()
	if runErr != nil {
		return sum, runErr
	}
	if traceErr != nil {
		return sum, fmt.Errorf("trace: %w", traceErr)
	}
	if err := report.Publish(s.sink, sum); err != nil {
		return sum, fmt.Errorf("publish: %w", err)
	}
	s.log.Infof("run %s: %d arrivals, %d departed, %d balked, %d reneged, satisfaction %.2f%%",
		sum.RunID, sum.Arrivals, sum.Departed, sum.Balked, sum.Reneged, sum.MeanSatisfaction)
	return sum, nil
}

// writeTrace drains events until the bus closes, even after a write error,
// so a blocking publisher never stalls.
func writeTrace(w io.Writer, events <-chan hub.Event) error {
	enc := json.NewEncoder(w)
	var err error
	for e := range events {
		if err == nil {
			err = enc.Encode(e)
		}
	}
	return err
}

// Close releases the sinks.
func (s *Service) Close() error {
	if c, ok := s.sink.(report.Closer); ok {
		return c.Close()
	}
	return nil
}
