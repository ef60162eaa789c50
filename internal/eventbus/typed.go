// Package eventbus fans simulation trace events out to subscribers.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Option configures a TypedBus.
type Option func(*options)

type options struct {
	buffer   int
	blocking bool
}

// WithBuffer sets the channel capacity of new subscriptions.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// WithBlocking makes Publish wait for every subscriber instead of dropping
// events for slow ones. Subscribers must keep draining until Close.
func WithBlocking() Option { return func(o *options) { o.blocking = true } }

// TypedBus is a type-safe publish/subscribe bus for events of type T.
type TypedBus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	opts    options
	dropped atomic.Uint64
}

// NewTyped creates a new TypedBus. Subscriptions are buffered to 8 events and
// delivery is non-blocking unless configured otherwise.
func NewTyped[T any](opts ...Option) *TypedBus[T] {
	b := &TypedBus[T]{opts: options{buffer: 8}}
	for _, o := range opts {
		o(&b.opts)
	}
	return b
}

// Publish sends the event to all subscribers.
func (b *TypedBus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		if b.opts.blocking {
			ch <- e
			continue
		}
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of events lost to full subscriptions.
func (b *TypedBus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber and returns its channel.
func (b *TypedBus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.opts.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
