package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a single outbound websocket session.
//
// ReadFrame and WriteText must be called from one goroutine at a time.
// Close may be called from any goroutine and unblocks a pending ReadFrame.
type Conn struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn *websocket.Conn

	// Write serialization
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// Dial establishes the websocket connection. On failure the returned error
// is an *Error with Op "dial" and no connection is allocated.
func Dial(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		return nil, &Error{Op: "dial", Err: ErrNoURL}
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, &Error{Op: "dial", URL: cfg.URL, Err: err}
	}

	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	logger.Debug("websocket dialed", "url", cfg.URL)

	return &Conn{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
	}, nil
}

// URL returns the remote endpoint.
func (c *Conn) URL() string {
	return c.cfg.URL
}

// ReadFrame blocks until the next data frame arrives. Ping, pong and close
// frames are handled by the connection and never returned.
func (c *Conn) ReadFrame() (Frame, error) {
	if c.cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			if c.isClosed() {
				err = ErrClosed
			}
			return Frame{}, &Error{Op: "read", URL: c.cfg.URL, Err: err}
		}
	}

	msgType, data, err := c.conn.ReadMessage()
	receivedAt := time.Now() // Capture timestamp immediately

	if err != nil {
		if c.isClosed() {
			err = ErrClosed
		}
		return Frame{}, &Error{Op: "read", URL: c.cfg.URL, Err: err}
	}

	return Frame{
		Type:       FrameType(msgType),
		Data:       data,
		ReceivedAt: receivedAt,
	}, nil
}

// WriteText writes data as a single text frame.
func (c *Conn) WriteText(data []byte) error {
	if c.isClosed() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &Error{Op: "write", URL: c.cfg.URL, Err: err}
	}
	return nil
}

// Close sends a normal closure frame and releases the socket. Calling Close
// more than once is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// Best effort: the peer may already be gone.
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	c.logger.Debug("websocket closed", "url", c.cfg.URL)
	return c.conn.Close()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
