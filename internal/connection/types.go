package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrClosed = errors.New("connection closed")
	ErrNoURL  = errors.New("websocket url is required")
)

// Error is a transport-level failure on the websocket session.
// Every Error is fatal to the session that produced it.
type Error struct {
	Op  string // "dial", "read" or "write"
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("websocket %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NormalClosure reports whether the peer ended the session with a
// normal (1000) or going-away (1001) close frame.
func (e *Error) NormalClosure() bool {
	return websocket.IsCloseError(e.Err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// IsConnectionError reports whether err is, or wraps, a transport Error.
func IsConnectionError(err error) bool {
	var connErr *Error
	return errors.As(err, &connErr)
}

// FrameType identifies the kind of data frame read from the connection.
type FrameType int

const (
	FrameText   FrameType = websocket.TextMessage
	FrameBinary FrameType = websocket.BinaryMessage
)

func (t FrameType) String() string {
	switch t {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame wraps a data frame with its receive timestamp.
type Frame struct {
	Type       FrameType
	Data       []byte    // Raw payload bytes
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a websocket connection.
type ClientConfig struct {
	URL              string        // e.g. ws://127.0.0.1:8080/ws
	HandshakeTimeout time.Duration // Upper bound on the HTTP upgrade
	WriteTimeout     time.Duration // Write deadline for sends
	ReadTimeout      time.Duration // Read deadline per frame (0 = wait forever)
	MaxMessageSize   int64         // Read limit in bytes (0 = unlimited)
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              "ws://127.0.0.1:8080/ws",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
