package connection

import (
	"log/slog"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultReconnectInterval    = 2 * time.Second
	DefaultMaxReconnectAttempts = 10
	DefaultMaxBackoffDelay      = 60 * time.Second
	DefaultQueueLimit           = 1000
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
)

// Config holds the merged client configuration. It is built once at
// construction by applying options over defaults and never mutated
// afterwards.
type Config struct {
	URL                  string
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	EnableJitter         bool
	MaxBackoffDelay      time.Duration
	HeartbeatInterval    time.Duration // 0 disables heartbeating
	HeartbeatTimeout     time.Duration // 0 disables the pong deadline
	EnableFallback       bool
	QueueLimit           int
	HandshakeTimeout     time.Duration
	WriteTimeout         time.Duration
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithReconnectInterval sets the base backoff delay.
func WithReconnectInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.ReconnectInterval = d
	}
}

// WithMaxReconnectAttempts bounds automatic reconnection.
func WithMaxReconnectAttempts(n int) Option {
	return func(m *Manager) {
		m.cfg.MaxReconnectAttempts = n
	}
}

// WithoutJitter disables backoff randomization. Jitter is on by default to
// avoid synchronized reconnection storms.
func WithoutJitter() Option {
	return func(m *Manager) {
		m.cfg.EnableJitter = false
	}
}

// WithMaxBackoffDelay caps the computed backoff delay.
func WithMaxBackoffDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.MaxBackoffDelay = d
	}
}

// WithHeartbeat enables liveness probing while open. A zero timeout sends
// pings without arming a pong deadline.
func WithHeartbeat(interval, timeout time.Duration) Option {
	return func(m *Manager) {
		m.cfg.HeartbeatInterval = interval
		m.cfg.HeartbeatTimeout = timeout
	}
}

// WithFallback enables the degraded fallback mode once retries are
// exhausted, instead of remaining in the terminal error state.
func WithFallback() Option {
	return func(m *Manager) {
		m.cfg.EnableFallback = true
	}
}

// WithQueueLimit bounds the outbound message queue. Values <= 0 make the
// queue unbounded.
func WithQueueLimit(n int) Option {
	return func(m *Manager) {
		m.cfg.QueueLimit = n
	}
}

// WithHandshakeTimeout bounds the WebSocket dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.HandshakeTimeout = d
	}
}

// WithWriteTimeout bounds each transport write.
func WithWriteTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.WriteTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDialer sets a custom transport dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithMetrics attaches an instrumentation sink.
func WithMetrics(metrics Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// Metrics receives instrumentation callbacks from the Manager. All methods
// may be called from multiple goroutines.
type Metrics interface {
	StateChanged(state State)
	ReconnectScheduled(attempt int)
	MessageSent()
	MessageReceived()
	MessageQueued()
}
