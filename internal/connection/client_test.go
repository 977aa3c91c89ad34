package connection

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig(url string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.URL = url
	return cfg
}

// drain keeps the server side reading until the client goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestDial(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	if conn.URL() != wsURL(server) {
		t.Errorf("URL() = %q, want %q", conn.URL(), wsURL(server))
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestDial_EmptyURL(t *testing.T) {
	conn, err := Dial(context.Background(), ClientConfig{}, nil)
	if conn != nil {
		t.Error("expected nil connection")
	}
	if !errors.Is(err, ErrNoURL) {
		t.Errorf("expected ErrNoURL, got %v", err)
	}
}

func TestDial_Unreachable(t *testing.T) {
	// Reserve a port, then free it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	conn, err := Dial(context.Background(), testConfig("ws://"+addr+"/ws"), nil)
	if conn != nil {
		t.Error("expected nil connection")
	}

	var connErr *Error
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if connErr.Op != "dial" {
		t.Errorf("Op = %q, want dial", connErr.Op)
	}
	if !IsConnectionError(err) {
		t.Error("IsConnectionError should be true")
	}
}

func TestDial_HandshakeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Errorf("expected ErrBadHandshake, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error %q should mention status 403", err)
	}
}

func TestDial_ContextCancelled(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn, err := Dial(ctx, testConfig(wsURL(server)), nil)
	if conn != nil {
		t.Error("expected nil connection")
	}
	if !IsConnectionError(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestConn_WriteText(t *testing.T) {
	var received []byte
	var msgType int
	var mu sync.Mutex
	done := make(chan struct{})

	server := mockWSServer(t, func(conn *websocket.Conn) {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		mu.Lock()
		received = msg
		msgType = mt
		mu.Unlock()
		close(done)
		drain(conn)
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	testMsg := []byte(`{"test":"message"}`)
	if err := conn.WriteText(testMsg); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for server to receive message")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(received) != string(testMsg) {
		t.Errorf("received %q, want %q", received, testMsg)
	}
	if msgType != websocket.TextMessage {
		t.Errorf("message type = %d, want text", msgType)
	}
}

func TestConn_ReadFrame(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"a":1}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		drain(conn)
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	frame, err := conn.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if frame.Type != FrameText {
		t.Errorf("Type = %s, want text", frame.Type)
	}
	if string(frame.Data) != `{"a":1}` {
		t.Errorf("Data = %q, want %q", frame.Data, `{"a":1}`)
	}
	if frame.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should not be zero")
	}

	frame, err = conn.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if frame.Type != FrameBinary {
		t.Errorf("Type = %s, want binary", frame.Type)
	}
}

func TestConn_PingAnswered(t *testing.T) {
	pongs := make(chan string, 1)

	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.SetPongHandler(func(data string) error {
			pongs <- data
			return nil
		})
		go drain(conn)

		if err := conn.WriteControl(websocket.PingMessage, []byte("heartbeat"), time.Now().Add(time.Second)); err != nil {
			t.Logf("ping error: %v", err)
			return
		}

		select {
		case <-pongs:
			conn.WriteMessage(websocket.TextMessage, []byte(`"after-ping"`))
		case <-time.After(time.Second):
			conn.WriteMessage(websocket.TextMessage, []byte(`"no-pong"`))
		}
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// The ping is consumed inside ReadFrame; the first frame returned is text.
	frame, err := conn.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if string(frame.Data) != `"after-ping"` {
		t.Errorf("Data = %q, want %q", frame.Data, `"after-ping"`)
	}
}

func TestConn_ReadFrame_NormalClosure(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second),
		)
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.ReadFrame()
	var connErr *Error
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if connErr.Op != "read" {
		t.Errorf("Op = %q, want read", connErr.Op)
	}
	if !connErr.NormalClosure() {
		t.Errorf("NormalClosure() = false for %v", err)
	}
}

func TestConn_ReadFrame_AbnormalClosure(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Drop the TCP connection without a close frame.
		conn.UnderlyingConn().Close()
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.ReadFrame()
	var connErr *Error
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if connErr.NormalClosure() {
		t.Error("NormalClosure() = true for dropped connection")
	}
}

func TestConn_ReadTimeout(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.ReadTimeout = 50 * time.Millisecond

	conn, err := Dial(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.ReadFrame()
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestConn_MaxMessageSize(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 64)))
		drain(conn)
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.MaxMessageSize = 16

	conn, err := Dial(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.ReadFrame()
	if !errors.Is(err, websocket.ErrReadLimit) {
		t.Errorf("expected ErrReadLimit, got %v", err)
	}
}

func TestConn_CloseUnblocksRead(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := conn.ReadFrame()
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	conn.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadFrame did not return after Close")
	}
}

func TestConn_ReadAfterClose(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.ReadTimeout = 50 * time.Millisecond
	conn, err := Dial(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	conn.Close()

	start := time.Now()
	_, err = conn.ReadFrame()
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	var connErr *Error
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if connErr.Op != "read" {
		t.Errorf("expected op read, got %q", connErr.Op)
	}
	if elapsed := time.Since(start); elapsed >= cfg.ReadTimeout {
		t.Errorf("ReadFrame waited %v on a closed connection", elapsed)
	}
}

func TestConn_WriteAfterClose(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	conn.Close()

	if err := conn.WriteText([]byte("test")); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestConn_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	conn, err := Dial(context.Background(), testConfig(wsURL(server)), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	// First close should succeed
	if err := conn.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should be no-op
	if err := conn.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestFrameType_String(t *testing.T) {
	tests := []struct {
		typ  FrameType
		want string
	}{
		{FrameText, "text"},
		{FrameBinary, "binary"},
		{FrameType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", int(tt.typ), got, tt.want)
		}
	}
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	if cfg.URL != "ws://127.0.0.1:8080/ws" {
		t.Errorf("URL = %q, want ws://127.0.0.1:8080/ws", cfg.URL)
	}
	if cfg.HandshakeTimeout != 10*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 10s", cfg.HandshakeTimeout)
	}
	if cfg.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %v, want 5s", cfg.WriteTimeout)
	}
}
