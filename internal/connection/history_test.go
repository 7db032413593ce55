package connection

import (
	"testing"
	"time"
)

func transitionN(n int) StateTransition {
	return StateTransition{
		From:      StateClosed,
		To:        StateConnecting,
		Timestamp: time.Unix(int64(n), 0),
		Reason:    "test",
	}
}

func TestHistory_InsertionOrder(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 5; i++ {
		h.Record(transitionN(i))
	}

	snap := h.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("Snapshot len = %d, want 5", len(snap))
	}
	for i, tr := range snap {
		if tr.Timestamp.Unix() != int64(i) {
			t.Errorf("snap[%d].Timestamp = %d, want %d", i, tr.Timestamp.Unix(), i)
		}
	}
}

func TestHistory_DropsOldestAtCapacity(t *testing.T) {
	h := NewHistory(100)
	for i := 0; i < 250; i++ {
		h.Record(transitionN(i))
	}

	if h.Len() != 100 {
		t.Fatalf("Len = %d, want 100", h.Len())
	}

	snap := h.Snapshot()
	if snap[0].Timestamp.Unix() != 150 {
		t.Errorf("oldest entry = %d, want 150", snap[0].Timestamp.Unix())
	}
	if snap[99].Timestamp.Unix() != 249 {
		t.Errorf("newest entry = %d, want 249", snap[99].Timestamp.Unix())
	}
}

func TestHistory_SnapshotIsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Record(transitionN(1))

	snap := h.Snapshot()
	snap[0].Reason = "mutated"

	if h.Snapshot()[0].Reason != "test" {
		t.Error("mutating a snapshot leaked into the history")
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 5; i++ {
		h.Record(transitionN(i))
	}
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", h.Len())
	}

	// Recording after Clear starts over cleanly.
	h.Record(transitionN(42))
	snap := h.Snapshot()
	if len(snap) != 1 || snap[0].Timestamp.Unix() != 42 {
		t.Errorf("Snapshot after Clear = %v", snap)
	}
}

func TestHistory_MinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Record(transitionN(1))
	h.Record(transitionN(2))

	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	if h.Snapshot()[0].Timestamp.Unix() != 2 {
		t.Error("expected only the newest entry to survive")
	}
}
