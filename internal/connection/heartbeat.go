package connection

import (
	"sync"
	"time"
)

// heartbeat probes liveness while the connection is open. Every interval it
// calls sendPing and, if a timeout is configured, arms a timer that fires
// onTimeout unless pongReceived disarms it first. All timers are owned by
// this struct so stop can cancel them deterministically.
type heartbeat struct {
	interval  time.Duration
	timeout   time.Duration
	sendPing  func() bool
	onTimeout func()

	mu           sync.Mutex
	pingTimer    *time.Timer
	timeoutTimer *time.Timer
	stopped      bool
}

func newHeartbeat(interval, timeout time.Duration, sendPing func() bool, onTimeout func()) *heartbeat {
	return &heartbeat{
		interval:  interval,
		timeout:   timeout,
		sendPing:  sendPing,
		onTimeout: onTimeout,
	}
}

// start arms the first ping timer.
func (h *heartbeat) start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.interval <= 0 {
		return
	}
	h.pingTimer = time.AfterFunc(h.interval, h.fire)
}

// fire sends one ping, arms the pong timeout, and schedules the next ping.
func (h *heartbeat) fire() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	if h.timeout > 0 && h.timeoutTimer == nil {
		h.timeoutTimer = time.AfterFunc(h.timeout, h.timeoutFired)
	}
	h.pingTimer = time.AfterFunc(h.interval, h.fire)
	h.mu.Unlock()

	h.sendPing()
}

// pongReceived disarms the pending timeout, if any.
func (h *heartbeat) pongReceived() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timeoutTimer != nil {
		h.timeoutTimer.Stop()
		h.timeoutTimer = nil
	}
}

func (h *heartbeat) timeoutFired() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.timeoutTimer = nil
	h.mu.Unlock()

	h.onTimeout()
}

// stop cancels all timers. After stop returns, fire and timeoutFired are
// no-ops even if a timer was already in flight.
func (h *heartbeat) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.pingTimer != nil {
		h.pingTimer.Stop()
		h.pingTimer = nil
	}
	if h.timeoutTimer != nil {
		h.timeoutTimer.Stop()
		h.timeoutTimer = nil
	}
}
