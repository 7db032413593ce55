package connection

import "time"

// State is the connection lifecycle state.
type State int

const (
	// StateClosed means no transport is active. Initial state.
	StateClosed State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateOpen means the transport is established and messages flow.
	StateOpen

	// StateClosing means a manual disconnect is completing.
	StateClosing

	// StateReconnecting means a retry timer has fired and a new dial is
	// about to start.
	StateReconnecting

	// StateError means the last connection failed. Recoverable while
	// retry attempts remain; terminal once they are exhausted and
	// fallback is disabled.
	StateError

	// StateFallback is the degraded mode entered after exhausting retry
	// attempts. No further automatic reconnection happens; the caller
	// may switch to polling.
	StateFallback
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	case StateFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// StateTransition records one state machine transition.
type StateTransition struct {
	From      State
	To        State
	Timestamp time.Time
	Reason    string
}
