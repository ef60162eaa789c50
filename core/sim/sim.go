// Package sim provides a deterministic single-goroutine discrete-event loop.
//
// Simulated time is a float64 number of hours. Events at the same instant run
// by ascending priority number, then in scheduling order. Entities are
// processes: their Step runs until it returns a Suspend telling the loop when
// to run them again.
package sim

import (
	"container/heap"
	"context"
	"fmt"
	"math"
)

// Process is an entity driven by the event loop.
type Process interface {
	Step(c *Context) Suspend
}

// ProcessFunc adapts a function to Process.
type ProcessFunc func(c *Context) Suspend

// Step calls f.
func (f ProcessFunc) Step(c *Context) Suspend { return f(c) }

// Suspend tells the loop how a process yields.
type Suspend struct {
	hold  bool
	hours float64
	prio  int
}

// Hold resumes the process after d hours at priority prio.
func Hold(d float64, prio int) Suspend { return Suspend{hold: true, hours: d, prio: prio} }

// Passivate parks the process until something activates it. A wake the step
// already scheduled for itself is kept.
func Passivate() Suspend { return Suspend{} }

// Proc is a handle on a process registered with a Context.
type Proc struct {
	name    string
	process Process
	next    *event
}

// Name returns the name given at Spawn.
func (p *Proc) Name() string { return p.name }

// Pending reports whether the process has a scheduled wake.
func (p *Proc) Pending() bool { return p.next != nil }

// WakeAt returns the time of the scheduled wake, +Inf when passive.
func (p *Proc) WakeAt() float64 {
	if p.next == nil {
		return math.Inf(1)
	}
	return p.next.at
}

// Context owns the logical clock and the event queue. It is not safe for
// concurrent use.
type Context struct {
	now   float64
	queue eventHeap
	seq   uint64
	err   error

	// EventsProcessed counts the events executed so far.
	EventsProcessed uint64
}

// New returns a context with the clock at zero.
func New() *Context {
	c := &Context{}
	heap.Init(&c.queue)
	return c
}

// Now returns the current simulated time in hours.
func (c *Context) Now() float64 { return c.now }

// Spawn registers a passive process.
func (c *Context) Spawn(name string, p Process) *Proc {
	return &Proc{name: name, process: p}
}

// Activate schedules p to run now at priority prio, replacing any pending wake.
func (c *Context) Activate(p *Proc, prio int) { c.ActivateAt(p, c.now, prio) }

// ActivateAt schedules p at time at, replacing any pending wake. Times in the
// past are clamped to now.
func (c *Context) ActivateAt(p *Proc, at float64, prio int) {
	c.Cancel(p)
	p.next = c.push(at, prio, p)
}

// Cancel drops the pending wake of p, if any.
func (c *Context) Cancel(p *Proc) {
	if p.next != nil {
		p.next.cancelled = true
		p.next = nil
	}
}

// Fail stops the loop after the running event with err.
func (c *Context) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Pending returns the number of queued events, cancelled ones included.
func (c *Context) Pending() int { return c.queue.Len() }

func (c *Context) push(at float64, prio int, p *Proc) *event {
	if at < c.now || math.IsNaN(at) {
		at = c.now
	}
	c.seq++
	ev := &event{at: at, prio: prio, seq: c.seq, proc: p}
	heap.Push(&c.queue, ev)
	return ev
}

// RunUntil executes events up to and including horizon, then leaves the clock
// at horizon. It stops early when ctx is done or an event called Fail.
func (c *Context) RunUntil(ctx context.Context, horizon float64) error {
	for c.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.queue[0].at > horizon {
			break
		}
		ev := heap.Pop(&c.queue).(*event)
		if ev.cancelled {
			continue
		}
		c.now = ev.at
		c.EventsProcessed++
		c.run(ev)
		if c.err != nil {
			return fmt.Errorf("t=%.4fh: %w", c.now, c.err)
		}
	}
	if horizon > c.now {
		c.now = horizon
	}
	return nil
}

func (c *Context) run(ev *event) {
	p := ev.proc
	p.next = nil
	s := p.process.Step(c)
	if s.hold {
		c.ActivateAt(p, c.now+s.hours, s.prio)
	}
}
