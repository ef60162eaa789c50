package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchCycles   *prometheus.CounterVec
	allocatedPower   prometheus.Gauge
	unallocatedPower prometheus.Gauge
	activeSessions   prometheus.Gauge
	lpFallbacks      prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Gauge, prometheus.Gauge, prometheus.Gauge, prometheus.Counter) {
	cycles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgcsim_dispatch_cycles_total",
			Help: "Number of allocation cycles run by the dispatcher",
		},
		[]string{"rule", "allocator"},
	)
	alloc := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgcsim_dispatch_allocated_kw",
			Help: "Grid power allocated in the last cycle",
		},
	)
	unalloc := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgcsim_dispatch_unallocated_kw",
			Help: "Grid power left unused in the last cycle",
		},
	)
	active := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgcsim_dispatch_active_sessions",
			Help: "Bound and connected stations in the last cycle",
		},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tgcsim_dispatch_lp_fallbacks_total",
			Help: "Number of LP allocations replaced by the greedy pass",
		},
	)
	return cycles, alloc, unalloc, active, fb
}

func init() {
	dispatchCycles, allocatedPower, unallocatedPower, activeSessions, lpFallbacks = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchCycles, allocatedPower, unallocatedPower, activeSessions, lpFallbacks)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchCycles, allocatedPower, unallocatedPower, activeSessions, lpFallbacks = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
