package scenarios

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/hub"
	"github.com/kilianp07/tgcsim/core/logger"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/report"
)

// Run simulates sc and returns its summary.
func Run(ctx context.Context, sc *Scenario, log logger.Logger) (report.Summary, error) {
	rule, err := dispatch.ParseRule(sc.Hub.Rule)
	if err != nil {
		return report.Summary{}, err
	}
	dc := dispatch.Config{Rule: rule.Name, Allocator: sc.Hub.Allocator}
	dc.SetDefaults()
	alloc, err := dispatch.NewAllocator(dc, log)
	if err != nil {
		return report.Summary{}, err
	}
	stations := make([]*model.Station, len(sc.Stations))
	for i, s := range sc.Stations {
		stations[i] = s.ToModel()
	}
	src, err := hub.NewScheduledArrivals(sc.Arrivals)
	if err != nil {
		return report.Summary{}, err
	}
	ceiling := hub.GridCeiling(stations, 1, sc.Hub.CeilingKW)
	cfg := hub.Config{
		HorizonHours:   sc.Hub.HorizonHours,
		MaxQueueLength: sc.Hub.MaxQueueLength,
		MaxWaitHours:   sc.Hub.MaxWaitHours,
	}
	h, err := hub.New(cfg, stations, src, dispatch.New(rule, alloc, ceiling, log), hub.WithLogger(log), hub.WithRunID(sc.Name))
	if err != nil {
		return report.Summary{}, err
	}
	if err := h.Run(ctx); err != nil {
		return report.Summary{}, err
	}
	return h.Summary(), nil
}

// Check compares s with the expectations of sc and returns one message per
// mismatch.
func Check(sc *Scenario, s report.Summary) []string {
	e := sc.Expected
	tol := e.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	var out []string
	count := func(name string, want *int, got int) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %d, got %d", name, *want, got))
		}
	}
	near := func(name string, want, got float64) {
		if math.Abs(want-got) > tol {
			out = append(out, fmt.Sprintf("%s: want %.6f, got %.6f", name, want, got))
		}
	}
	count("arrivals", e.Arrivals, s.Arrivals)
	count("departed", e.Departed, s.Departed)
	count("balked", e.Balked, s.Balked)
	count("reneged", e.Reneged, s.Reneged)
	count("in progress", e.InProgress, s.InProgress)
	if e.MeanSatisfaction != nil {
		near("mean satisfaction", *e.MeanSatisfaction, s.MeanSatisfaction)
	}
	if e.GridEnergyKWh != nil {
		near("grid energy", *e.GridEnergyKWh, s.Grid.EnergyKWh)
	}

	byID := make(map[string]report.VehicleStats, len(s.Vehicles))
	for _, v := range s.Vehicles {
		byID[v.ID] = v
	}
	for _, id := range sortedKeys(e.Delivered) {
		v, ok := byID[id]
		if !ok {
			out = append(out, fmt.Sprintf("vehicle %s missing", id))
			continue
		}
		near("delivered "+id, e.Delivered[id], v.DeliveredKWh)
	}
	for _, id := range sortedKeys(e.States) {
		if got := byID[id].State; got != e.States[id] {
			out = append(out, fmt.Sprintf("state %s: want %s, got %q", id, e.States[id], got))
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
