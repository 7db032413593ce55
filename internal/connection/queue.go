package connection

import (
	"sync"

	"github.com/tradedeck/streamcore/internal/model"
)

// Queue is a FIFO buffer for outbound envelopes while the client is not
// open. It is bounded: at the limit, enqueueing evicts the oldest entry.
type Queue struct {
	mu      sync.Mutex
	items   []model.Envelope
	limit   int
	dropped int64
}

// NewQueue creates a queue. limit <= 0 means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

// Enqueue appends an envelope, evicting the oldest when at the limit.
func (q *Queue) Enqueue(env model.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.items) >= q.limit {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, env)
}

// Flush drains the queue in insertion order, transmitting each envelope via
// send. If send reports failure (the transport is no longer open), flushing
// stops immediately and the unsent remainder, including the failed
// envelope, is re-queued at the front. Returns the number sent.
func (q *Queue) Flush(send func(model.Envelope) bool) int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for i, env := range items {
		if !send(env) {
			q.requeueFront(items[i:])
			return i
		}
	}
	return len(items)
}

// requeueFront puts envelopes back ahead of anything enqueued mid-flush.
func (q *Queue) requeueFront(items []model.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(append([]model.Envelope{}, items...), q.items...)
}

// Len returns the number of queued envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many envelopes were evicted by the bound.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Clear discards all queued envelopes.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
