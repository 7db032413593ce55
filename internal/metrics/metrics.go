package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tradedeck/streamcore/internal/connection"
)

// ConnectionMetrics implements connection.Metrics on top of Prometheus.
type ConnectionMetrics struct {
	state      *prometheus.GaugeVec
	reconnects prometheus.Counter
	sent       prometheus.Counter
	received   prometheus.Counter
	queued     prometheus.Counter
}

// allStates enumerates the gauge label values so every state series exists
// from the start.
var allStates = []connection.State{
	connection.StateClosed,
	connection.StateConnecting,
	connection.StateOpen,
	connection.StateClosing,
	connection.StateReconnecting,
	connection.StateError,
	connection.StateFallback,
}

// New registers the connection metrics with the given registerer. A nil
// registerer uses the default one.
func New(reg prometheus.Registerer) *ConnectionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &ConnectionMetrics{
		state: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "streamcore",
			Name:      "connection_state",
			Help:      "Current connection state (1 for the active state, 0 otherwise).",
		}, []string{"state"}),
		reconnects: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Name:      "reconnect_attempts_total",
			Help:      "Number of scheduled reconnection attempts.",
		}),
		sent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Name:      "messages_sent_total",
			Help:      "Messages written to the transport.",
		}),
		received: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Name:      "messages_received_total",
			Help:      "Application messages received from the transport.",
		}),
		queued: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Name:      "messages_queued_total",
			Help:      "Messages buffered while the connection was not open.",
		}),
	}

	for _, s := range allStates {
		m.state.WithLabelValues(s.String()).Set(0)
	}
	m.state.WithLabelValues(connection.StateClosed.String()).Set(1)

	return m
}

// StateChanged flips the state gauge to the new state.
func (m *ConnectionMetrics) StateChanged(state connection.State) {
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

// ReconnectScheduled counts a scheduled reconnection attempt.
func (m *ConnectionMetrics) ReconnectScheduled(attempt int) {
	m.reconnects.Inc()
}

// MessageSent counts a transport write.
func (m *ConnectionMetrics) MessageSent() { m.sent.Inc() }

// MessageReceived counts an inbound application message.
func (m *ConnectionMetrics) MessageReceived() { m.received.Inc() }

// MessageQueued counts a message buffered for later delivery.
func (m *ConnectionMetrics) MessageQueued() { m.queued.Inc() }
