package connection

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

// ErrorCategory is the failure taxonomy surfaced to subscribers. It only
// influences scheduling decisions and error event payloads; it is never
// stored persistently.
type ErrorCategory int

const (
	// CategoryUnknown covers malformed data and unclassified transport
	// errors. Never fatal to the process.
	CategoryUnknown ErrorCategory = iota

	// CategoryConnectionLost is a transient loss, retried per backoff
	// policy.
	CategoryConnectionLost

	// CategoryTimeout is heartbeat non-response, treated as connection
	// loss.
	CategoryTimeout

	// CategoryNonRecoverable is an authentication/policy failure. Retries
	// remain bounded by the attempt limit, but the category is surfaced
	// distinctly so the UI can prompt re-authentication instead of
	// silently retrying.
	CategoryNonRecoverable
)

// String returns the wire name of the category.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryConnectionLost:
		return "connection_lost"
	case CategoryTimeout:
		return "timeout"
	case CategoryNonRecoverable:
		return "non_recoverable"
	default:
		return "unknown"
	}
}

// ErrorNotice is the payload of error events.
type ErrorNotice struct {
	Category ErrorCategory
	Message  string
}

// ClassifyClose maps a WebSocket close code to an error category.
//
// A normal closure (1000) received while the client did not initiate the
// disconnect is still classified as a connection loss and remains
// retry-eligible; manual closures never reach classification.
func ClassifyClose(code int) ErrorCategory {
	switch code {
	case websocket.CloseNormalClosure, websocket.CloseAbnormalClosure:
		return CategoryConnectionLost
	case websocket.ClosePolicyViolation:
		return CategoryNonRecoverable
	default:
		return CategoryUnknown
	}
}

// ClassifyError maps a transport error to an error category. Close errors
// defer to their close code; everything else is classified by shape.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return ClassifyClose(closeErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return CategoryConnectionLost
	}

	return CategoryUnknown
}
