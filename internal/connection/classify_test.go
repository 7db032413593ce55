package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/gorilla/websocket"
)

func TestClassifyClose(t *testing.T) {
	tests := []struct {
		name string
		code int
		want ErrorCategory
	}{
		{"normal closure", 1000, CategoryConnectionLost},
		{"abnormal closure", 1006, CategoryConnectionLost},
		{"policy violation", 1008, CategoryNonRecoverable},
		{"going away", 1001, CategoryUnknown},
		{"protocol error", 1002, CategoryUnknown},
		{"internal error", 1011, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyClose(tt.code); got != tt.want {
				t.Errorf("ClassifyClose(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

var _ net.Error = fakeTimeoutErr{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, CategoryUnknown},
		{"close error defers to code", &websocket.CloseError{Code: 1008}, CategoryNonRecoverable},
		{"wrapped close error", errors.Join(errors.New("read"), &websocket.CloseError{Code: 1006}), CategoryConnectionLost},
		{"net timeout", fakeTimeoutErr{}, CategoryTimeout},
		{"context deadline", context.DeadlineExceeded, CategoryTimeout},
		{"eof", io.EOF, CategoryConnectionLost},
		{"unexpected eof", io.ErrUnexpectedEOF, CategoryConnectionLost},
		{"closed conn", net.ErrClosed, CategoryConnectionLost},
		{"anything else", errors.New("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{CategoryConnectionLost, "connection_lost"},
		{CategoryTimeout, "timeout"},
		{CategoryNonRecoverable, "non_recoverable"},
		{CategoryUnknown, "unknown"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
