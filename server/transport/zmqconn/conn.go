// Package zmqconn implements transport.Conn on top of a ZeroMQ PAIR socket.
package zmqconn

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/transport"
	"github.com/hiCozyty/zmq-bridge/server/uuid"
	"github.com/juju/errors"
	zmq "github.com/pebbe/zmq4"
)

var (
	ErrConnectTimeout = errors.New("connect timeout")
	ErrClosed         = errors.New("conn closed")
)

type Params struct {
	Address string

	Linger    time.Duration
	Immediate bool
	SendHWM   int
	RecvHWM   int

	// SendTimeout bounds a blocked send. Negative blocks forever.
	SendTimeout time.Duration

	// ConnectTimeout, when positive, makes Dial wait until the peer accepted
	// the TCP connection. ZeroMQ connects in the background otherwise.
	ConnectTimeout time.Duration
}

var _ transport.Conn = &Conn{}

// Conn is not safe for concurrent use, ZeroMQ sockets must only be used by
// one goroutine at a time.
type Conn struct {
	log    logger.Logger
	socket *zmq.Socket
	poller *zmq.Poller
	closed bool
}

func Dial(ctx context.Context, log logger.Logger, params Params) (*Conn, error) {
	log = log.WithNamespaceAppended("zmqconn").WithCtx(logger.Ctx{
		"address": params.Address,
	})

	socket, err := zmq.NewSocket(zmq.PAIR)
	if err != nil {
		return nil, errors.Annotate(err, "new socket")
	}

	if err := configure(socket, params); err != nil {
		socket.Close()

		return nil, errors.Trace(err)
	}

	var monitor *zmq.Socket

	if params.ConnectTimeout > 0 {
		monitor, err = startMonitor(socket)
		if err != nil {
			socket.Close()

			return nil, errors.Trace(err)
		}
	}

	if err := socket.Connect(params.Address); err != nil {
		stopMonitor(socket, monitor)
		socket.Close()

		return nil, errors.Annotatef(err, "connect: %s", params.Address)
	}

	if monitor != nil {
		err := awaitConnected(ctx, log, monitor, params.ConnectTimeout)

		stopMonitor(socket, monitor)

		if err != nil {
			socket.Close()

			return nil, errors.Annotatef(err, "connect: %s", params.Address)
		}
	}

	poller := zmq.NewPoller()
	poller.Add(socket, zmq.POLLIN)

	log.Info("Connected", nil)

	return &Conn{
		log:    log,
		socket: socket,
		poller: poller,
	}, nil
}

func configure(socket *zmq.Socket, params Params) error {
	if err := socket.SetLinger(params.Linger); err != nil {
		return errors.Annotate(err, "set linger")
	}

	if err := socket.SetImmediate(params.Immediate); err != nil {
		return errors.Annotate(err, "set immediate")
	}

	if params.SendHWM > 0 {
		if err := socket.SetSndhwm(params.SendHWM); err != nil {
			return errors.Annotate(err, "set sndhwm")
		}
	}

	if params.RecvHWM > 0 {
		if err := socket.SetRcvhwm(params.RecvHWM); err != nil {
			return errors.Annotate(err, "set rcvhwm")
		}
	}

	if params.SendTimeout != 0 {
		if err := socket.SetSndtimeo(params.SendTimeout); err != nil {
			return errors.Annotate(err, "set sndtimeo")
		}
	}

	return nil
}

func startMonitor(socket *zmq.Socket) (*zmq.Socket, error) {
	addr := fmt.Sprintf("inproc://zmqconn-monitor-%s", uuid.New())

	events := zmq.EVENT_CONNECTED | zmq.EVENT_CONNECT_DELAYED | zmq.EVENT_CONNECT_RETRIED

	if err := socket.Monitor(addr, events); err != nil {
		return nil, errors.Annotate(err, "monitor")
	}

	monitor, err := zmq.NewSocket(zmq.PAIR)
	if err != nil {
		return nil, errors.Annotate(err, "new monitor socket")
	}

	if err := monitor.Connect(addr); err != nil {
		monitor.Close()

		return nil, errors.Annotate(err, "connect monitor")
	}

	return monitor, nil
}

func stopMonitor(socket *zmq.Socket, monitor *zmq.Socket) {
	if monitor == nil {
		return
	}

	_ = socket.Monitor("", 0)
	_ = monitor.Close()
}

func awaitConnected(
	ctx context.Context,
	log logger.Logger,
	monitor *zmq.Socket,
	timeout time.Duration,
) error {
	deadline := time.Now().Add(timeout)

	poller := zmq.NewPoller()
	poller.Add(monitor, zmq.POLLIN)

	for {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return errors.Trace(ErrConnectTimeout)
		}

		if wait > 100*time.Millisecond {
			wait = 100 * time.Millisecond
		}

		polled, err := poller.Poll(wait)
		if err != nil {
			return errors.Annotate(err, "poll monitor")
		}

		if len(polled) == 0 {
			continue
		}

		event, _, _, err := monitor.RecvEvent(0)
		if err != nil {
			return errors.Annotate(err, "recv monitor event")
		}

		if event == zmq.EVENT_CONNECTED {
			return nil
		}

		log.Debug(fmt.Sprintf("Waiting for peer: %v", event), nil)
	}
}

// Send writes one frame. When the peer is not connected and the socket is
// immediate, it fails after SendTimeout instead of queueing.
func (c *Conn) Send(data []byte) error {
	if c.closed {
		return errors.Trace(ErrClosed)
	}

	if _, err := c.socket.SendBytes(data, 0); err != nil {
		if isEAGAIN(err) {
			return errors.Annotate(err, "send: peer not ready")
		}

		return errors.Annotate(err, "send")
	}

	return nil
}

func (c *Conn) Recv(timeout time.Duration) ([]byte, error) {
	if c.closed {
		return nil, errors.Trace(ErrClosed)
	}

	polled, err := c.poller.Poll(timeout)
	if err != nil {
		return nil, errors.Annotate(err, "poll")
	}

	if len(polled) == 0 {
		return nil, errors.Trace(transport.ErrTimeout)
	}

	data, err := c.socket.RecvBytes(zmq.DONTWAIT)
	if err != nil {
		if isEAGAIN(err) {
			return nil, errors.Trace(transport.ErrTimeout)
		}

		return nil, errors.Annotate(err, "recv")
	}

	return data, nil
}

func (c *Conn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true

	c.log.Info("Closing", nil)

	return errors.Annotate(c.socket.Close(), "close socket")
}

func isEAGAIN(err error) bool {
	return zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN)
}
