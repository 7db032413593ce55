// Package connection implements the resilient real-time connection client
// used by the dashboard to hold a live data/control channel with the server.
//
// The Manager owns a single WebSocket transport and drives an explicit state
// machine over it: automatic reconnection with capped exponential backoff and
// jitter, application-level ping/pong heartbeating, FIFO queueing of outbound
// messages while disconnected, close-code based failure classification, and a
// synchronous event bus with a bounded transition history for diagnostics.
//
// Transitions are strictly sequential. Callbacks from a superseded transport
// instance are discarded via a generation token, and Destroy cancels every
// outstanding timer before returning.
package connection
