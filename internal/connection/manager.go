package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradedeck/streamcore/internal/model"
)

var (
	// ErrDestroyed is returned by operations on a destroyed manager.
	ErrDestroyed = errors.New("connection manager destroyed")

	// ErrMissingURL is returned when no server URL is configured.
	ErrMissingURL = errors.New("url is required")
)

// pendingEvent is a bus emission deferred until the state lock is released,
// so listeners can safely call back into the Manager.
type pendingEvent struct {
	event   Event
	payload any
}

// Manager owns the transport handle and drives all state transitions. One
// mutex serializes every mutation, so transitions are strictly sequential;
// callbacks from a superseded transport generation are discarded.
type Manager struct {
	cfg     Config
	logger  *slog.Logger
	dialer  Dialer
	metrics Metrics

	bus     *Bus
	history *History
	queue   *Queue
	sched   *Scheduler

	mu          sync.Mutex
	state       State
	gen         uint64
	transport   Transport
	attempts    int
	manualClose bool
	destroyed   bool

	reconnectTimer *time.Timer
	hb             *heartbeat

	pending  []pendingEvent
	emitting bool
}

// NewManager creates a manager for the given server URL. Options are merged
// over defaults; the resulting configuration is immutable.
func NewManager(url string, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg: Config{
			URL:                  url,
			ReconnectInterval:    DefaultReconnectInterval,
			MaxReconnectAttempts: DefaultMaxReconnectAttempts,
			EnableJitter:         true,
			MaxBackoffDelay:      DefaultMaxBackoffDelay,
			QueueLimit:           DefaultQueueLimit,
			HandshakeTimeout:     DefaultHandshakeTimeout,
			WriteTimeout:         DefaultWriteTimeout,
		},
		logger:  slog.Default(),
		bus:     NewBus(),
		history: NewHistory(historyCapacity),
		state:   StateClosed,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if m.dialer == nil {
		m.dialer = NewWebSocketDialer(m.cfg.HandshakeTimeout, m.cfg.WriteTimeout)
	}

	m.queue = NewQueue(m.cfg.QueueLimit)
	m.sched = NewScheduler(
		m.cfg.ReconnectInterval,
		m.cfg.MaxBackoffDelay,
		m.cfg.MaxReconnectAttempts,
		m.cfg.EnableJitter,
	)

	return m, nil
}

// Config returns the merged configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Connect opens a new transport. It is a no-op when a dial is already in
// flight or a transport is active; otherwise it moves the machine to
// StateConnecting and dials asynchronously.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}
	if m.state == StateConnecting || m.state == StateReconnecting || m.transport != nil {
		m.mu.Unlock()
		return nil
	}

	m.manualClose = false
	m.cancelReconnectLocked()
	m.beginDialLocked("connect requested")
	m.mu.Unlock()

	m.emitPending()
	return nil
}

// Disconnect closes the connection with a normal closure code. Manual
// closure never triggers reconnection scheduling.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.disconnectLocked("disconnect requested")
	m.mu.Unlock()

	m.emitPending()
}

// Reconnect forces a fresh connection: disconnect, then connect, with the
// manual-close flag reset so the new connection is eligible for automatic
// recovery.
func (m *Manager) Reconnect() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}
	m.disconnectLocked("reconnect requested")
	m.manualClose = false
	m.beginDialLocked("reconnect requested")
	m.mu.Unlock()

	m.emitPending()
	return nil
}

// Send transmits the envelope if the connection is open. Otherwise the
// envelope is queued for delivery on the next open and Send returns false:
// the caller is told the message was not yet transmitted.
func (m *Manager) Send(env model.Envelope) bool {
	if err := env.Validate(); err != nil {
		return false
	}
	env = model.Stamp(env)

	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return false
	}
	gen := m.gen
	if m.state != StateOpen || m.transport == nil {
		m.enqueueLocked(env)
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	if m.sendDirect(gen, env) {
		return true
	}

	// The transport shut down between the state check and the write; keep
	// the message for the next connection.
	m.mu.Lock()
	if !m.destroyed {
		m.enqueueLocked(env)
	}
	m.mu.Unlock()
	m.emitPending()
	return false
}

// Destroy tears the manager down: every pending timer is cancelled, the
// transport is force-closed, the queue and history are cleared, and the
// state is left Closed. Idempotent, and safe to call before any Connect.
func (m *Manager) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	m.gen++
	m.cancelReconnectLocked()
	m.stopHeartbeatLocked()
	t := m.transport
	m.transport = nil
	m.queue.Clear()
	m.transitionLocked(StateClosed, "destroyed")
	m.mu.Unlock()

	if t != nil {
		t.Close(websocket.CloseNormalClosure, "destroyed")
	}
	m.emitPending()
	m.history.Clear()
}

// Status returns the current connection state.
func (m *Manager) Status() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the connection is open.
func (m *Manager) IsConnected() bool {
	return m.Status() == StateOpen
}

// StateHistory returns the recorded transitions, oldest first.
func (m *Manager) StateHistory() []StateTransition {
	return m.history.Snapshot()
}

// QueueLen returns the number of messages waiting for the next open.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// On subscribes a listener to a bus event and returns its unsubscribe
// function.
func (m *Manager) On(event Event, fn Listener) func() {
	return m.bus.Subscribe(event, fn)
}

// ----------------------------------------------------------------------------
// State machine internals. All *Locked methods require m.mu held.
// ----------------------------------------------------------------------------

func (m *Manager) transitionLocked(to State, reason string) {
	if m.state == to {
		return
	}
	from := m.state
	m.state = to

	tr := StateTransition{From: from, To: to, Timestamp: time.Now(), Reason: reason}
	m.history.Record(tr)
	m.logger.Debug("state transition", "from", from, "to", to, "reason", reason)
	if m.metrics != nil {
		m.metrics.StateChanged(to)
	}

	m.pending = append(m.pending,
		pendingEvent{EventStateTransition, tr},
		pendingEvent{EventStatusChange, to},
	)
}

func (m *Manager) errorLocked(cat ErrorCategory, msg string) {
	m.pending = append(m.pending, pendingEvent{EventError, ErrorNotice{Category: cat, Message: msg}})
}

func (m *Manager) enqueueLocked(env model.Envelope) {
	m.queue.Enqueue(env)
	if m.metrics != nil {
		m.metrics.MessageQueued()
	}
}

// beginDialLocked bumps the generation, moves to StateConnecting, and dials
// in the background. The old generation's callbacks become no-ops.
func (m *Manager) beginDialLocked(reason string) {
	m.gen++
	gen := m.gen
	m.transitionLocked(StateConnecting, reason)
	go m.dial(gen)
}

func (m *Manager) dial(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	defer cancel()

	t, err := m.dialer.Dial(ctx, m.cfg.URL)

	m.mu.Lock()
	if m.destroyed || gen != m.gen {
		m.mu.Unlock()
		if err == nil {
			t.Close(websocket.CloseNormalClosure, "superseded")
		}
		return
	}

	if err != nil {
		m.logger.Warn("dial failed", "url", m.cfg.URL, "error", err)
		m.failLocked(ClassifyError(err), fmt.Sprintf("dial failed: %v", err))
		m.mu.Unlock()
		m.emitPending()
		return
	}

	m.transport = t
	m.attempts = 0
	m.transitionLocked(StateOpen, "transport open")
	m.startHeartbeatLocked(gen)
	m.mu.Unlock()

	go m.readLoop(gen, t)

	m.emitPending()
	m.flushQueue(gen)
}

// failLocked classifies a failure, then either schedules a retry or settles
// into the terminal state. The attempt counter increments once per
// scheduled attempt and resets only on a successful open.
func (m *Manager) failLocked(cat ErrorCategory, msg string) {
	m.errorLocked(cat, msg)

	if m.sched.ShouldRetry(m.attempts) {
		m.transitionLocked(StateError, msg)
		delay := m.sched.Delay(m.attempts)
		m.attempts++
		if m.metrics != nil {
			m.metrics.ReconnectScheduled(m.attempts)
		}

		m.cancelReconnectLocked()
		gen := m.gen
		m.reconnectTimer = time.AfterFunc(delay, func() {
			m.reconnectTimerFired(gen)
		})
		m.logger.Info("reconnect scheduled", "attempt", m.attempts, "delay", delay)
		return
	}

	if m.cfg.EnableFallback {
		m.transitionLocked(StateFallback, "reconnect attempts exhausted")
		m.logger.Warn("entering fallback mode", "attempts", m.attempts)
		return
	}

	m.transitionLocked(StateError, "reconnect attempts exhausted")
	m.logger.Warn("reconnect attempts exhausted", "attempts", m.attempts)
}

func (m *Manager) reconnectTimerFired(gen uint64) {
	m.mu.Lock()
	if m.destroyed || gen != m.gen || m.state != StateError {
		m.mu.Unlock()
		return
	}
	m.transitionLocked(StateReconnecting, "retry timer fired")
	m.beginDialLocked("reconnect attempt")
	m.mu.Unlock()

	m.emitPending()
}

func (m *Manager) disconnectLocked(reason string) {
	m.manualClose = true
	m.cancelReconnectLocked()
	m.stopHeartbeatLocked()
	m.gen++

	t := m.transport
	m.transport = nil
	if t != nil {
		m.transitionLocked(StateClosing, reason)
		t.Close(websocket.CloseNormalClosure, "client disconnect")
	}
	m.transitionLocked(StateClosed, reason)
}

// readLoop pumps one transport generation. It exits on the first read
// error; the close handler decides what happens next.
func (m *Manager) readLoop(gen uint64, t Transport) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			m.transportClosed(gen, err)
			return
		}
		m.inbound(gen, data)
	}
}

func (m *Manager) inbound(gen uint64, data []byte) {
	env, err := model.Decode(data)

	m.mu.Lock()
	if m.destroyed || gen != m.gen {
		m.mu.Unlock()
		return
	}

	if err != nil {
		m.logger.Warn("dropping malformed payload", "error", err)
		m.errorLocked(CategoryUnknown, fmt.Sprintf("malformed payload: %v", err))
		m.mu.Unlock()
		m.emitPending()
		return
	}

	switch env.Type {
	case model.TypePong:
		hb := m.hb
		m.mu.Unlock()
		if hb != nil {
			hb.pongReceived()
		}
		return
	case model.TypePing:
		m.mu.Unlock()
		m.sendDirect(gen, model.Stamp(model.NewPong()))
		return
	}

	if m.metrics != nil {
		m.metrics.MessageReceived()
	}
	m.pending = append(m.pending, pendingEvent{EventMessage, env})
	m.mu.Unlock()

	m.emitPending()
}

func (m *Manager) transportClosed(gen uint64, err error) {
	code, text := 0, ""
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		code, text = closeErr.Code, closeErr.Text
	}

	m.mu.Lock()
	if m.destroyed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	// Supersede this transport so a second error from the same generation
	// (read loop racing a failed write) cannot double-schedule.
	m.gen++
	m.stopHeartbeatLocked()
	m.transport = nil

	if m.manualClose {
		m.transitionLocked(StateClosed, "manual disconnect")
		m.mu.Unlock()
		m.emitPending()
		return
	}

	var cat ErrorCategory
	var msg string
	if code != 0 {
		cat = ClassifyClose(code)
		msg = fmt.Sprintf("connection closed: code=%d reason=%q", code, text)
	} else {
		cat = ClassifyError(err)
		msg = fmt.Sprintf("connection error: %v", err)
	}
	m.logger.Warn("connection lost", "code", code, "category", cat, "error", err)

	m.failLocked(cat, msg)
	m.mu.Unlock()

	m.emitPending()
}

func (m *Manager) onHeartbeatTimeout(gen uint64) {
	m.mu.Lock()
	if m.destroyed || gen != m.gen || m.state != StateOpen {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.stopHeartbeatLocked()
	t := m.transport
	m.transport = nil

	m.logger.Warn("heartbeat timeout, treating as connection loss")
	m.failLocked(CategoryTimeout, "heartbeat timeout: no pong received")
	m.mu.Unlock()

	if t != nil {
		t.Close(websocket.CloseGoingAway, "heartbeat timeout")
	}
	m.emitPending()
}

func (m *Manager) startHeartbeatLocked(gen uint64) {
	if m.cfg.HeartbeatInterval <= 0 {
		return
	}
	hb := newHeartbeat(m.cfg.HeartbeatInterval, m.cfg.HeartbeatTimeout,
		func() bool { return m.sendDirect(gen, model.Stamp(model.NewPing())) },
		func() { m.onHeartbeatTimeout(gen) },
	)
	m.hb = hb
	hb.start()
}

func (m *Manager) stopHeartbeatLocked() {
	if m.hb != nil {
		m.hb.stop()
		m.hb = nil
	}
}

func (m *Manager) cancelReconnectLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

// sendDirect writes one envelope on the current transport, dropping it when
// the generation is stale or the connection is not open. A write error
// routes through the normal failure path.
func (m *Manager) sendDirect(gen uint64, env model.Envelope) bool {
	m.mu.Lock()
	if m.destroyed || gen != m.gen || m.state != StateOpen || m.transport == nil {
		m.mu.Unlock()
		return false
	}
	t := m.transport
	m.mu.Unlock()

	data, err := model.Encode(env)
	if err != nil {
		return false
	}

	if err := t.WriteMessage(data); err != nil {
		m.logger.Warn("write failed", "error", err)
		m.transportClosed(gen, err)
		return false
	}

	if m.metrics != nil {
		m.metrics.MessageSent()
	}
	return true
}

// flushQueue drains queued messages in FIFO order after an open.
func (m *Manager) flushQueue(gen uint64) {
	if m.queue.Len() == 0 {
		return
	}
	sent := m.queue.Flush(func(env model.Envelope) bool {
		return m.sendDirect(gen, env)
	})
	if sent > 0 {
		m.logger.Debug("flushed queued messages", "count", sent)
	}
}

// emitPending drains the deferred event spool without holding the state
// lock during listener calls. Re-entrant calls (a listener invoking the
// Manager) return immediately; the outer drain picks their events up, which
// preserves global emission order.
func (m *Manager) emitPending() {
	m.mu.Lock()
	if m.emitting {
		m.mu.Unlock()
		return
	}
	m.emitting = true
	for len(m.pending) > 0 {
		ev := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()
		m.bus.Emit(ev.event, ev.payload)
		m.mu.Lock()
	}
	m.emitting = false
	m.mu.Unlock()
}
