// Package session runs one websocket session end to end: a single dial,
// the echo loop, and guaranteed teardown. Sessions never reconnect.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/wsecho/internal/connection"
	"github.com/rickgao/wsecho/internal/echo"
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("session already run")

// Recorder observes dials in addition to loop activity.
type Recorder interface {
	echo.Recorder
	Dialed(err error)
}

// Config configures a session.
type Config struct {
	Connection connection.ClientConfig
	Loop       echo.Config
}

const (
	phaseConnecting int32 = iota
	phaseConnected
	phaseFailed
)

// Session owns at most one connection for its lifetime.
type Session struct {
	cfg      Config
	id       string
	logger   *slog.Logger
	recorder Recorder
	loop     *echo.Loop

	started atomic.Bool
	phase   atomic.Int32
}

// New creates a session with a fresh ID. Every log line it emits carries
// that ID as session_id.
func New(cfg Config, logger *slog.Logger, recorder Recorder) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	id := uuid.NewString()
	logger = logger.With("session_id", id)

	return &Session{
		cfg:      cfg,
		id:       id,
		logger:   logger,
		recorder: recorder,
		loop:     echo.NewLoop(cfg.Loop, logger, recorder),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State reports "connecting" until the dial completes, then the loop state.
// A failed dial reports "closed".
func (s *Session) State() string {
	switch s.phase.Load() {
	case phaseConnecting:
		return "connecting"
	case phaseFailed:
		return echo.StateClosed.String()
	default:
		return s.loop.State().String()
	}
}

// Run dials once and echoes until the connection ends or ctx is cancelled.
//
// It returns nil after a normal peer closure or an interrupt, the dial or
// transport *connection.Error otherwise, and *echo.DecodeError when the
// loop is configured to stop on malformed JSON.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	s.logger.Debug("dialing", "url", s.cfg.Connection.URL)

	conn, err := connection.Dial(ctx, s.cfg.Connection, s.logger)
	s.recorder.Dialed(err)
	if err != nil {
		s.phase.Store(phaseFailed)
		s.recorder.StateChanged(echo.StateClosed.String())
		s.logger.Info("Websocket disconnected", "error", err)
		return err
	}
	defer conn.Close()

	s.phase.Store(phaseConnected)
	s.logger.Info("Websocket connected", "url", conn.URL())
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return s.loop.Run(conn)
	})
	g.Go(func() error {
		// Closing the socket is the only way to unblock a pending read.
		<-gctx.Done()
		conn.Close()
		return nil
	})
	err = g.Wait()

	if interrupted(ctx, err) {
		s.logger.Info("interrupted, closing connection")
		err = nil
	}

	if err != nil {
		s.logger.Info("Websocket disconnected", "error", err, "uptime", time.Since(start))
	} else {
		s.logger.Info("Websocket disconnected", "uptime", time.Since(start))
	}
	return err
}

type nopRecorder struct{}

func (nopRecorder) Dialed(error)                {}
func (nopRecorder) FrameReceived(string)        {}
func (nopRecorder) MessageEchoed(time.Duration) {}
func (nopRecorder) DecodeFailed()               {}
func (nopRecorder) StateChanged(string)         {}

// interrupted reports whether the loop ended because ctx was cancelled. A
// loop error other than the read cut short by our own Close is kept even
// when ctx is already done.
func interrupted(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return err == nil || errors.Is(err, connection.ErrClosed)
}
