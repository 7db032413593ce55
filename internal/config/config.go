package config

import (
	"time"

	"github.com/tradedeck/streamcore/internal/connection"
)

// ProbeConfig is the root configuration for a streamprobe instance.
type ProbeConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig identifies the streaming endpoint.
type ServerConfig struct {
	URL string `yaml:"url"`
}

// ConnectionConfig holds the resilient client settings.
type ConnectionConfig struct {
	ReconnectInterval    time.Duration `yaml:"reconnect_interval"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	EnableJitter         *bool         `yaml:"enable_jitter"` // nil means default (on)
	MaxBackoffDelay      time.Duration `yaml:"max_backoff_delay"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout     time.Duration `yaml:"heartbeat_timeout"`
	EnableFallback       bool          `yaml:"enable_fallback"`
	QueueLimit           int           `yaml:"queue_limit"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Options converts the file configuration into connection manager options.
func (c *ProbeConfig) Options() []connection.Option {
	opts := []connection.Option{
		connection.WithReconnectInterval(c.Connection.ReconnectInterval),
		connection.WithMaxReconnectAttempts(c.Connection.MaxReconnectAttempts),
		connection.WithMaxBackoffDelay(c.Connection.MaxBackoffDelay),
		connection.WithQueueLimit(c.Connection.QueueLimit),
		connection.WithHandshakeTimeout(c.Connection.HandshakeTimeout),
		connection.WithWriteTimeout(c.Connection.WriteTimeout),
	}

	if c.Connection.EnableJitter != nil && !*c.Connection.EnableJitter {
		opts = append(opts, connection.WithoutJitter())
	}
	if c.Connection.HeartbeatInterval > 0 {
		opts = append(opts, connection.WithHeartbeat(
			c.Connection.HeartbeatInterval,
			c.Connection.HeartbeatTimeout,
		))
	}
	if c.Connection.EnableFallback {
		opts = append(opts, connection.WithFallback())
	}

	return opts
}
