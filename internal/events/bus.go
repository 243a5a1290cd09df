// Package events implements an in-process publish/subscribe bus for object
// mutation notifications.
package events

import (
	"log/slog"
	"sync"
)

// Name identifies the kind of mutation an Event reports.
type Name string

const (
	ObjectCreatedPut    Name = "ObjectCreated:Put"
	ObjectCreatedCopy   Name = "ObjectCreated:Copy"
	ObjectRemovedDelete Name = "ObjectRemoved:Delete"
)

// Event is one structured record delivered to subscribers.
type Event struct {
	Name       Name
	Bucket     string
	Key        string
	Size       int64
	ETag       string
}

// Handler receives events delivered by the bus.
type Handler func(Event)

// Cancel detaches a subscription when invoked.
type Cancel func()

// Bus is a synchronous, in-process multiplexer. Publishers deliver to every
// current subscriber, in subscription order, on the publishing goroutine;
// delivery errors (panics) from one subscriber never affect the others.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers handler and returns a Cancel that detaches it.
func (b *Bus) Subscribe(handler Handler) Cancel {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// SubscribeFiltered registers handler but only invokes it for events passing
// pred, layering filtering on top of Subscribe as the design calls for.
func (b *Bus) SubscribeFiltered(pred func(Event) bool, handler Handler) Cancel {
	return b.Subscribe(func(e Event) {
		if pred(e) {
			handler(e)
		}
	})
}

// Publish delivers e to every current subscriber in subscription order. A
// panicking subscriber is recovered and does not stop delivery to the rest.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// subscription order: ids are monotonically increasing at registration.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		deliver(h, e)
	}
}

func deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("events: subscriber panicked", "event", string(e.Name), "bucket", e.Bucket, "key", e.Key, "panic", r)
		}
	}()
	h(e)
}

// Close detaches every subscriber. A closed server drops all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	b.subs = make(map[int]Handler)
	b.mu.Unlock()
}
