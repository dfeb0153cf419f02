package transport

import (
	"context"
	"sync"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/message"
	"github.com/hiCozyty/zmq-bridge/server/multierr"
	"github.com/juju/errors"
)

const (
	DefaultHighWaterMark = 1000
	DefaultPollInterval  = 20 * time.Millisecond
	DefaultReplyTimeout  = 5 * time.Second
	DefaultErrorBackoff  = 100 * time.Millisecond
)

type LinkParams struct {
	Conn Conn
	Log  logger.Logger

	// SendHWM bounds the number of requests waiting for the owner.
	SendHWM int
	// RecvHWM bounds the number of received messages waiting for a consumer.
	RecvHWM int

	// PollInterval is the longest the owner blocks in Conn.Recv before it
	// checks for new requests or shutdown.
	PollInterval time.Duration
	// ReplyTimeout bounds the wait for the reply to a single request.
	ReplyTimeout time.Duration
	// ErrorBackoff is the pause after a failed Recv.
	ErrorBackoff time.Duration

	// OnError is called from the owner goroutine for every receive or decode
	// error. The loop keeps running. Defaults to logging the error.
	OnError func(err error)
}

type result struct {
	text string
	err  error
}

type request struct {
	ctx   context.Context
	text  string
	reply chan result
}

// Link is the only user of a Conn. A single owner goroutine performs every
// send and receive, so a request and its reply are never interleaved with
// another receive. Other goroutines talk to the owner through a bounded
// inbox (SendAndAwaitReply) and a bounded outbox (Messages).
type Link struct {
	params LinkParams
	log    logger.Logger
	conn   Conn

	inbox  chan request
	outbox chan message.Message

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewLink starts the owner goroutine. Call Close to stop it and close conn.
func NewLink(params LinkParams) *Link {
	if params.SendHWM <= 0 {
		params.SendHWM = DefaultHighWaterMark
	}

	if params.RecvHWM <= 0 {
		params.RecvHWM = DefaultHighWaterMark
	}

	if params.PollInterval <= 0 {
		params.PollInterval = DefaultPollInterval
	}

	if params.ReplyTimeout <= 0 {
		params.ReplyTimeout = DefaultReplyTimeout
	}

	if params.ErrorBackoff <= 0 {
		params.ErrorBackoff = DefaultErrorBackoff
	}

	if params.Log == nil {
		params.Log = logger.New()
	}

	log := params.Log.WithNamespaceAppended("link")

	if params.OnError == nil {
		params.OnError = func(err error) {
			log.Error("Transport error", err, nil)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	l := &Link{
		params: params,
		log:    log,
		conn:   params.Conn,
		inbox:  make(chan request, params.SendHWM),
		outbox: make(chan message.Message, params.RecvHWM),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go l.run(ctx)

	return l
}

// Messages returns the stream of unsolicited messages from the peer. The
// channel is closed after the owner exits.
func (l *Link) Messages() <-chan message.Message {
	return l.outbox
}

// Done is closed once the owner goroutine has exited.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// SendAndAwaitReply hands text to the owner, which sends it and waits for the
// next message from the peer. That message is returned as the reply and is
// not published on Messages. The pairing is best effort: the peer protocol
// has no correlation ids, so an unrelated message that happens to arrive
// first is taken as the reply.
//
// The request is never queued behind a full inbox: ErrLinkBusy is returned
// immediately and the text is dropped.
func (l *Link) SendAndAwaitReply(ctx context.Context, text string) (string, error) {
	select {
	case <-l.done:
		prometheusRequestsDroppedTotal.Inc()

		return "", errors.Trace(ErrLinkClosed)
	default:
	}

	req := request{
		ctx:   ctx,
		text:  text,
		reply: make(chan result, 1),
	}

	select {
	case l.inbox <- req:
	default:
		prometheusRequestsDroppedTotal.Inc()

		return "", errors.Trace(ErrLinkBusy)
	}

	select {
	case res := <-req.reply:
		return res.text, res.err
	case <-ctx.Done():
		return "", errors.Trace(ctx.Err())
	case <-l.done:
		// The owner might have answered just before it exited.
		select {
		case res := <-req.reply:
			return res.text, res.err
		default:
			return "", errors.Trace(ErrLinkClosed)
		}
	}
}

// Close stops the owner, fails pending requests with ErrLinkClosed and
// closes the underlying Conn. It is safe to call more than once.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.cancel()
		<-l.done

		l.closeErr = errors.Annotate(l.conn.Close(), "close conn")
	})

	return l.closeErr
}

func (l *Link) run(ctx context.Context) {
	defer close(l.done)
	defer close(l.outbox)
	defer l.drainInbox()

	l.log.Info("Link owner started", nil)
	defer l.log.Info("Link owner stopped", nil)

	for {
		// Requests take priority over polling so a relay waits at most one
		// PollInterval.
		select {
		case <-ctx.Done():
			return
		case req := <-l.inbox:
			l.roundTrip(ctx, req)

			continue
		default:
		}

		data, err := l.conn.Recv(l.params.PollInterval)
		if err != nil {
			if multierr.Is(err, ErrTimeout) {
				continue
			}

			prometheusErrorsTotal.WithLabelValues("recv").Inc()
			l.params.OnError(errors.Annotate(err, "recv"))

			if !sleep(ctx, l.params.ErrorBackoff) {
				return
			}

			continue
		}

		msg, err := message.Decode(message.DirectionPeerToClients, data)
		if err != nil {
			prometheusErrorsTotal.WithLabelValues("decode").Inc()
			l.params.OnError(errors.Annotate(err, "decode"))

			continue
		}

		prometheusMessagesReceivedTotal.Inc()

		select {
		case l.outbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Link) roundTrip(ctx context.Context, req request) {
	if err := req.ctx.Err(); err != nil {
		// The caller gave up while the request was queued.
		req.reply <- result{err: errors.Trace(err)}

		return
	}

	start := time.Now()

	prometheusRequestsTotal.Inc()

	if err := l.conn.Send([]byte(req.text)); err != nil {
		prometheusErrorsTotal.WithLabelValues("send").Inc()
		req.reply <- result{err: errors.Annotate(err, "send")}

		return
	}

	deadline := start.Add(l.params.ReplyTimeout)

	for {
		wait := time.Until(deadline)
		if wait <= 0 {
			req.reply <- result{err: errors.Trace(ErrReplyTimeout)}

			return
		}

		if wait > l.params.PollInterval {
			wait = l.params.PollInterval
		}

		data, err := l.conn.Recv(wait)
		if err != nil {
			if multierr.Is(err, ErrTimeout) {
				select {
				case <-ctx.Done():
					req.reply <- result{err: errors.Trace(ErrLinkClosed)}

					return
				case <-req.ctx.Done():
					req.reply <- result{err: errors.Trace(req.ctx.Err())}

					return
				default:
				}

				continue
			}

			prometheusErrorsTotal.WithLabelValues("recv").Inc()
			req.reply <- result{err: errors.Annotate(err, "recv reply")}

			return
		}

		prometheusRoundTripDuration.Observe(time.Since(start).Seconds())

		msg, err := message.Decode(message.DirectionPeerToClients, data)
		if err != nil {
			prometheusErrorsTotal.WithLabelValues("decode").Inc()
			req.reply <- result{err: errors.Annotate(err, "decode reply")}

			return
		}

		req.reply <- result{text: msg.Text()}

		return
	}
}

func (l *Link) drainInbox() {
	for {
		select {
		case req := <-l.inbox:
			req.reply <- result{err: errors.Trace(ErrLinkClosed)}
		default:
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
