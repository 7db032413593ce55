package connection

import "sync"

// historyCapacity bounds the in-memory transition log.
const historyCapacity = 100

// History is a fixed-capacity ring buffer of state transitions. When full,
// recording drops the oldest entry.
type History struct {
	mu    sync.Mutex
	buf   []StateTransition
	head  int // oldest entry
	count int
}

// NewHistory creates a history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]StateTransition, capacity)}
}

// Record appends a transition, evicting the oldest entry at capacity.
func (h *History) Record(t StateTransition) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == len(h.buf) {
		// Overwrite the oldest slot and advance the read position.
		h.buf[h.head] = t
		h.head = (h.head + 1) % len(h.buf)
		return
	}

	h.buf[(h.head+h.count)%len(h.buf)] = t
	h.count++
}

// Snapshot returns the transitions in insertion order, oldest first.
func (h *History) Snapshot() []StateTransition {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]StateTransition, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of recorded transitions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Clear discards all recorded transitions.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.head = 0
	h.count = 0
}
