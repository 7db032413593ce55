package connection

import (
	"testing"
)

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(EventMessage, func(any) { order = append(order, 1) })
	bus.Subscribe(EventMessage, func(any) { order = append(order, 2) })
	bus.Subscribe(EventMessage, func(any) { order = append(order, 3) })

	bus.Emit(EventMessage, nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestBus_EmitOnlyMatchingEvent(t *testing.T) {
	bus := NewBus()

	var got int
	bus.Subscribe(EventError, func(any) { got++ })

	bus.Emit(EventMessage, nil)
	bus.Emit(EventStatusChange, nil)

	if got != 0 {
		t.Errorf("listener invoked %d times for other events, want 0", got)
	}

	bus.Emit(EventError, nil)
	if got != 1 {
		t.Errorf("listener invoked %d times, want 1", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	off := bus.Subscribe(EventMessage, func(any) { calls++ })

	bus.Emit(EventMessage, nil)
	off()
	bus.Emit(EventMessage, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// Unsubscribing twice must be harmless.
	off()
	bus.Emit(EventMessage, nil)
	if calls != 1 {
		t.Errorf("calls after double unsubscribe = %d, want 1", calls)
	}
}

func TestBus_UnsubscribeDuringEmit(t *testing.T) {
	bus := NewBus()

	var secondCalled bool
	var off func()

	bus.Subscribe(EventMessage, func(any) { off() })
	off = bus.Subscribe(EventMessage, func(any) { secondCalled = true })

	bus.Emit(EventMessage, nil)

	if secondCalled {
		t.Error("listener invoked after being unsubscribed mid-emit")
	}
}

func TestBus_SubscribeDuringEmit(t *testing.T) {
	bus := NewBus()

	var lateCalls int
	bus.Subscribe(EventMessage, func(any) {
		bus.Subscribe(EventMessage, func(any) { lateCalls++ })
	})

	// The snapshot taken at emit time must not include the new listener.
	bus.Emit(EventMessage, nil)
	if lateCalls != 0 {
		t.Errorf("late listener called %d times during its own registration emit, want 0", lateCalls)
	}

	bus.Emit(EventMessage, nil)
	if lateCalls != 1 {
		t.Errorf("late listener called %d times on next emit, want 1", lateCalls)
	}
}

func TestBus_PayloadDelivered(t *testing.T) {
	bus := NewBus()

	var got any
	bus.Subscribe(EventStatusChange, func(p any) { got = p })
	bus.Emit(EventStatusChange, StateOpen)

	if got != StateOpen {
		t.Errorf("payload = %v, want %v", got, StateOpen)
	}
}
