// Package events provides an in-process publish/subscribe channel for
// cross-cutting signals that must reach otherwise disconnected components.
// The only event currently defined is session invalidation: any component may
// subscribe, and the auth layer publishes when a session stops being valid.
package events

import (
	"sync"
	"time"
)

// SessionInvalidated is published when the current session is no longer
// valid (expired or rejected token). Subscribers should drop any
// session-scoped state they hold; the draft store and pipeline deliberately
// do not subscribe.
type SessionInvalidated struct {
	Reason string
	At     time.Time
}

// Subscription identifies one subscriber on the bus.
type Subscription struct {
	id int
	ch chan SessionInvalidated
}

// C returns the channel events are delivered on.
func (s *Subscription) C() <-chan SessionInvalidated {
	return s.ch
}

// Bus fans SessionInvalidated events out to all subscribers. Delivery is
// non-blocking: a subscriber that has fallen behind misses the event rather
// than stalling the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers a new subscriber with a buffered delivery channel.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{id: b.nextID, ch: make(chan SessionInvalidated, 1)}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(event SessionInvalidated) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
		}
	}
}
