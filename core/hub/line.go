package hub

import "github.com/kilianp07/tgcsim/core/model"

// WaitingLine is the FIFO of vehicles waiting for a station. It tracks its
// time-weighted mean length.
type WaitingLine struct {
	items  []*model.Vehicle
	max    int
	area   float64
	since  float64
	lastAt float64
}

func newWaitingLine(start float64) *WaitingLine {
	return &WaitingLine{since: start, lastAt: start}
}

// Len returns the number of waiting vehicles.
func (l *WaitingLine) Len() int { return len(l.items) }

// MaxLen returns the longest observed length.
func (l *WaitingLine) MaxLen() int { return l.max }

// Push appends v at time now.
func (l *WaitingLine) Push(now float64, v *model.Vehicle) {
	l.tally(now)
	l.items = append(l.items, v)
	if len(l.items) > l.max {
		l.max = len(l.items)
	}
}

// Pop removes the head at time now. It returns nil when empty.
func (l *WaitingLine) Pop(now float64) *model.Vehicle {
	if len(l.items) == 0 {
		return nil
	}
	l.tally(now)
	v := l.items[0]
	l.items[0] = nil
	l.items = l.items[1:]
	return v
}

// Remove drops v from the line and reports whether it was waiting.
func (l *WaitingLine) Remove(now float64, v *model.Vehicle) bool {
	for i, w := range l.items {
		if w == v {
			l.tally(now)
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// MeanLen returns the time-weighted mean length up to now.
func (l *WaitingLine) MeanLen(now float64) float64 {
	span := now - l.since
	if span <= 0 {
		return float64(len(l.items))
	}
	area := l.area
	if now > l.lastAt {
		area += float64(len(l.items)) * (now - l.lastAt)
	}
	return area / span
}

func (l *WaitingLine) tally(now float64) {
	if now > l.lastAt {
		l.area += float64(len(l.items)) * (now - l.lastAt)
		l.lastAt = now
	}
}
