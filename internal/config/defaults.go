package config

import (
	"github.com/tradedeck/streamcore/internal/connection"
)

// Default values for optional configuration fields.
const (
	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"
)

func (c *ProbeConfig) applyDefaults() {
	if c.Connection.ReconnectInterval == 0 {
		c.Connection.ReconnectInterval = connection.DefaultReconnectInterval
	}
	if c.Connection.MaxReconnectAttempts == 0 {
		c.Connection.MaxReconnectAttempts = connection.DefaultMaxReconnectAttempts
	}
	if c.Connection.MaxBackoffDelay == 0 {
		c.Connection.MaxBackoffDelay = connection.DefaultMaxBackoffDelay
	}
	if c.Connection.QueueLimit == 0 {
		c.Connection.QueueLimit = connection.DefaultQueueLimit
	}
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = connection.DefaultHandshakeTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = connection.DefaultWriteTimeout
	}
	if c.Connection.HeartbeatInterval > 0 && c.Connection.HeartbeatTimeout == 0 {
		// A probe without a deadline never detects silence; default to
		// half the interval.
		c.Connection.HeartbeatTimeout = c.Connection.HeartbeatInterval / 2
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
