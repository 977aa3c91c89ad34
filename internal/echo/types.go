package echo

import (
	"fmt"
	"time"

	"github.com/rickgao/wsecho/internal/connection"
)

// Conn is the part of a websocket connection the loop needs.
// *connection.Conn satisfies it.
type Conn interface {
	ReadFrame() (connection.Frame, error)
	WriteText(data []byte) error
}

// State is the position of the loop in its read/process cycle.
type State int32

const (
	StateListening State = iota
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Decode error policies.
const (
	DecodeSkip  = "skip"  // log, count and keep listening
	DecodeClose = "close" // terminate the loop with a *DecodeError
)

// Config configures the message loop.
type Config struct {
	DecodeErrors string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{DecodeErrors: DecodeSkip}
}

// DecodeError reports a text frame whose payload is not a single JSON value.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode text frame: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Recorder observes loop activity. metrics.Collector implements it.
type Recorder interface {
	FrameReceived(kind string)
	MessageEchoed(elapsed time.Duration)
	DecodeFailed()
	StateChanged(state string)
}

type nopRecorder struct{}

func (nopRecorder) FrameReceived(string)        {}
func (nopRecorder) MessageEchoed(time.Duration) {}
func (nopRecorder) DecodeFailed()               {}
func (nopRecorder) StateChanged(string)         {}
