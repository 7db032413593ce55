package connection

import (
	"sync"
	"sync/atomic"
)

// Event names the bus channels the Manager publishes on.
type Event string

const (
	// EventStatusChange carries the new State.
	EventStatusChange Event = "statusChange"

	// EventStateTransition carries the full StateTransition record.
	EventStateTransition Event = "stateTransition"

	// EventMessage carries a parsed model.Envelope.
	EventMessage Event = "message"

	// EventError carries an ErrorNotice.
	EventError Event = "error"
)

// Listener receives event payloads. Delivery is synchronous, in
// registration order.
type Listener func(payload any)

type subscription struct {
	fn     Listener
	active atomic.Bool
}

// Bus is a synchronous pub/sub dispatcher. Unsubscribing takes effect
// immediately: a cancelled listener is never invoked again, including for
// events raised during the same synchronous call stack.
type Bus struct {
	mu   sync.Mutex
	subs map[Event][]*subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Event][]*subscription)}
}

// Subscribe registers a listener and returns its unsubscribe function. The
// unsubscribe function is safe to call multiple times.
func (b *Bus) Subscribe(event Event, fn Listener) func() {
	s := &subscription{fn: fn}
	s.active.Store(true)

	b.mu.Lock()
	b.subs[event] = append(b.subs[event], s)
	b.mu.Unlock()

	return func() {
		// Flip the flag first so in-flight emits skip this listener.
		s.active.Store(false)

		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[event]
		for i, sub := range list {
			if sub == s {
				b.subs[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the payload to every active listener of the event, in
// registration order.
func (b *Bus) Emit(event Event, payload any) {
	b.mu.Lock()
	list := b.subs[event]
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, s := range snapshot {
		if s.active.Load() {
			s.fn(payload)
		}
	}
}
