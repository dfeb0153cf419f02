package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/identifiers"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/juju/errors"
	"nhooyr.io/websocket"
)

var ErrInvalidTransition = errors.New("invalid session state transition")

type SessionState int

const (
	SessionStateConnecting SessionState = iota
	SessionStateActive
	SessionStateClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionStateConnecting:
		return "connecting"
	case SessionStateActive:
		return "active"
	case SessionStateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

type WSWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, msg []byte) error
}

// Session is the output side of one websocket client. It only accepts
// deliveries while it is active, so a session that was closed never receives
// another broadcast even when a registry snapshot still contains it.
type Session struct {
	id  identifiers.SessionID
	log logger.Logger

	mu    sync.Mutex
	state SessionState

	send chan string
	done chan struct{}
}

func NewSession(log logger.Logger, id identifiers.SessionID, sendBuffer int) *Session {
	if sendBuffer <= 0 {
		sendBuffer = 1
	}

	return &Session{
		id: id,
		log: log.WithCtx(logger.Ctx{
			"session_id": id,
		}),
		state: SessionStateConnecting,
		send:  make(chan string, sendBuffer),
		done:  make(chan struct{}),
	}
}

func (s *Session) ID() identifiers.SessionID {
	return s.id
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Activate moves a connecting session to active.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionStateConnecting {
		return errors.Annotatef(ErrInvalidTransition, "%s -> %s", s.state, SessionStateActive)
	}

	s.state = SessionStateActive

	return nil
}

// Close moves the session to closed and stops WriteLoop. Messages still
// queued are discarded. It reports whether this call closed the session.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionStateClosed {
		return false
	}

	s.state = SessionStateClosed
	close(s.done)

	return true
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Deliver queues text without blocking. It returns false when the session is
// not active or its queue is full.
func (s *Session) Deliver(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionStateActive {
		return false
	}

	select {
	case s.send <- text:
		return true
	default:
		prometheusSessionQueueFullTotal.Inc()
		s.log.Warn("Send queue full, dropping message", nil)

		return false
	}
}

// WriteLoop writes queued messages to w as text frames, one at a time and in
// order, until the session is closed, ctx is done or a write fails.
func (s *Session) WriteLoop(ctx context.Context, w WSWriter, timeout time.Duration) error {
	for {
		select {
		case text := <-s.send:
			if err := s.write(ctx, w, timeout, text); err != nil {
				return errors.Trace(err)
			}
		case <-s.done:
			return nil
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		}
	}
}

func (s *Session) write(ctx context.Context, w WSWriter, timeout time.Duration, text string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := w.Write(ctx, websocket.MessageText, []byte(text))

	return errors.Annotate(err, "write")
}
