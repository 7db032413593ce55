package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors that would prevent startup.
func (c *ProbeConfig) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return fmt.Errorf("server.url must use ws:// or wss://, got %q", c.Server.URL)
	}

	if c.Connection.ReconnectInterval < 0 {
		return fmt.Errorf("connection.reconnect_interval must not be negative")
	}
	if c.Connection.MaxReconnectAttempts < 0 {
		return fmt.Errorf("connection.max_reconnect_attempts must not be negative")
	}
	if c.Connection.MaxBackoffDelay < c.Connection.ReconnectInterval {
		return fmt.Errorf("connection.max_backoff_delay must be >= connection.reconnect_interval")
	}
	if c.Connection.HeartbeatInterval < 0 || c.Connection.HeartbeatTimeout < 0 {
		return fmt.Errorf("heartbeat durations must not be negative")
	}
	if c.Connection.HeartbeatInterval > 0 && c.Connection.HeartbeatTimeout >= c.Connection.HeartbeatInterval {
		return fmt.Errorf("connection.heartbeat_timeout must be shorter than the interval")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be a valid TCP port, got %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
	}

	return nil
}
