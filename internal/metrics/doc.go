// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Connection state and scheduled reconnect attempts
//   - Message send/receive rates
//   - Outbound queue buffering
package metrics
