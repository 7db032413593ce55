package connection

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is a single live connection to the server. The Manager owns
// exactly one transport per generation; retries always dial a fresh one.
type Transport interface {
	// ReadMessage blocks until the next payload or a read error. A close
	// frame surfaces as *websocket.CloseError.
	ReadMessage() ([]byte, error)

	// WriteMessage writes one text payload. Safe for concurrent use.
	WriteMessage(data []byte) error

	// Close sends a close frame with the given code and tears the
	// connection down.
	Close(code int, reason string) error
}

// Dialer opens transports. Tests substitute their own implementation.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// wsDialer dials gorilla WebSocket transports.
type wsDialer struct {
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
}

// NewWebSocketDialer creates the production dialer.
func NewWebSocketDialer(handshakeTimeout, writeTimeout time.Duration) Dialer {
	return &wsDialer{
		handshakeTimeout: handshakeTimeout,
		writeTimeout:     writeTimeout,
	}
}

func (d *wsDialer) Dial(ctx context.Context, url string) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return &wsTransport{conn: conn, writeTimeout: d.writeTimeout}, nil
}

// wsTransport wraps a gorilla connection with write serialization.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
	closed  bool
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close(code int, reason string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	// Best effort close frame; the server may already be gone.
	t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second),
	)
	return t.conn.Close()
}
