package model

import "math"

// Sample is one step of a piecewise constant power series.
type Sample struct {
	At      float64 `json:"at"`
	PowerKW float64 `json:"power_kw"`
}

// EnergyLog integrates a piecewise constant power series incrementally. Each
// Record adds the previous power times the elapsed time, so the delivered
// energy is known at any instant without scanning the history.
type EnergyLog struct {
	samples []Sample
	lastAt  float64
	lastKW  float64
	energy  float64
	active  float64
}

// Reset clears the log and starts a new series at zero power.
func (l *EnergyLog) Reset(at float64) {
	l.samples = append(l.samples[:0], Sample{At: at})
	l.lastAt = at
	l.lastKW = 0
	l.energy = 0
	l.active = 0
}

// Record integrates the current power up to at and switches to power kw.
// Timestamps earlier than the last sample are clamped to it.
func (l *EnergyLog) Record(at, kw float64) {
	if len(l.samples) == 0 {
		l.Reset(at)
	}
	if at < l.lastAt {
		at = l.lastAt
	}
	dt := at - l.lastAt
	l.energy += l.lastKW * dt
	if l.lastKW > 0 {
		l.active += dt
	}
	l.lastAt = at
	l.lastKW = kw
	if last := &l.samples[len(l.samples)-1]; last.At == at {
		last.PowerKW = kw
		return
	}
	l.samples = append(l.samples, Sample{At: at, PowerKW: kw})
}

// Finalize integrates up to at and drops the power to zero.
func (l *EnergyLog) Finalize(at float64) { l.Record(at, 0) }

// EnergyAt returns the energy in kWh accumulated up to at without mutating the log.
func (l *EnergyLog) EnergyAt(at float64) float64 {
	return l.energy + l.lastKW*math.Max(at-l.lastAt, 0)
}

// Energy returns the energy accumulated up to the last sample.
func (l *EnergyLog) Energy() float64 { return l.energy }

// PowerKW returns the power of the running segment.
func (l *EnergyLog) PowerKW() float64 { return l.lastKW }

// ActiveHours returns the time spent at a positive power up to the last sample.
func (l *EnergyLog) ActiveHours() float64 { return l.active }

// MeanActivePower returns the average power over the active time.
func (l *EnergyLog) MeanActivePower() float64 {
	if l.active == 0 {
		return 0
	}
	return l.energy / l.active
}

// Samples returns a copy of the recorded series.
func (l *EnergyLog) Samples() []Sample {
	out := make([]Sample, len(l.samples))
	copy(out, l.samples)
	return out
}
