package echo

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/wsecho/internal/connection"
)

// Loop reads frames from one connection and echoes every JSON text frame
// back on it. Frames are handled strictly one at a time: the echo for a
// frame is written before the next frame is read.
type Loop struct {
	cfg      Config
	logger   *slog.Logger
	recorder Recorder

	state atomic.Int32
}

// NewLoop creates a message loop. A nil logger or recorder falls back to
// slog.Default() and a no-op recorder.
func NewLoop(cfg Config, logger *slog.Logger, recorder Recorder) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.DecodeErrors == "" {
		cfg.DecodeErrors = DecodeSkip
	}

	l := &Loop{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
	}
	l.state.Store(int32(StateListening))
	return l
}

// State returns the current loop state. Safe for concurrent use.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Run processes frames until the connection ends. It returns nil when the
// peer closed the session normally, the *connection.Error that ended the
// session otherwise, or a *DecodeError under the close policy.
func (l *Loop) Run(conn Conn) error {
	l.state.Store(int32(StateListening))
	l.recorder.StateChanged(StateListening.String())

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			l.setState(StateClosed)

			var connErr *connection.Error
			if errors.As(err, &connErr) && connErr.NormalClosure() {
				l.logger.Debug("peer closed connection", "error", err)
				return nil
			}
			return err
		}

		l.recorder.FrameReceived(frame.Type.String())

		if frame.Type != connection.FrameText {
			continue
		}

		l.setState(StateProcessing)

		if err := l.process(conn, frame); err != nil {
			var decErr *DecodeError
			if errors.As(err, &decErr) && l.cfg.DecodeErrors == DecodeSkip {
				l.logger.Warn("skipping malformed message",
					"error", decErr.Err,
					"bytes", len(frame.Data),
				)
				l.setState(StateListening)
				continue
			}

			l.setState(StateClosed)
			return err
		}

		l.setState(StateListening)
	}
}

// process decodes, logs and echoes one text frame.
func (l *Loop) process(conn Conn, frame connection.Frame) error {
	msg, err := Decode(frame.Data)
	if err != nil {
		l.recorder.DecodeFailed()
		return &DecodeError{Err: err}
	}

	l.logger.Info("message received", "message", Format(msg))

	out, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("encode echo: %w", err)
	}

	if err := conn.WriteText(out); err != nil {
		return err
	}

	l.recorder.MessageEchoed(time.Since(frame.ReceivedAt))
	return nil
}

func (l *Loop) setState(s State) {
	if State(l.state.Swap(int32(s))) != s {
		l.recorder.StateChanged(s.String())
	}
}
