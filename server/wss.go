package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/identifiers"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/message"
	"github.com/hiCozyty/zmq-bridge/server/registry"
	"github.com/juju/errors"
	"nhooyr.io/websocket"
)

// Relayer forwards client text to the transport peer.
type Relayer interface {
	Relay(ctx context.Context, text string)
}

type Registry interface {
	Add(member registry.Member)
	Remove(id identifiers.SessionID)
}

type WSSParams struct {
	Log      logger.Logger
	Relayer  Relayer
	Registry Registry
	Session  SessionConfig
}

type WSS struct {
	log      logger.Logger
	relayer  Relayer
	registry Registry
	config   SessionConfig
}

func NewWSS(params WSSParams) *WSS {
	return &WSS{
		log:      params.Log.WithNamespaceAppended("wss"),
		relayer:  params.Relayer,
		registry: params.Registry,
		config:   params.Session,
	}
}

func (wss *WSS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wss.HandleSession(w, r)
}

// HandleSession upgrades the request and serves one websocket session until
// the client goes away.
func (wss *WSS) HandleSession(w http.ResponseWriter, r *http.Request) {
	var err error

	start := time.Now()
	prometheusWSConnTotal.Inc()
	prometheusWSConnActive.Inc()

	defer func() {
		prometheusWSConnActive.Dec()

		if err != nil {
			prometheusWSConnErrTotal.Inc()
		}

		prometheusWSConnDuration.Observe(time.Since(start).Seconds())
	}()

	var c *websocket.Conn

	c, err = websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		wss.log.Error("Accept websocket connection", errors.Trace(err), nil)

		return
	}

	if wss.config.ReadLimit > 0 {
		c.SetReadLimit(wss.config.ReadLimit)
	}

	session := NewSession(wss.log, identifiers.NewSessionID(), wss.config.SendBuffer)
	log := session.log.WithCtx(logger.Ctx{
		"remote_addr": r.RemoteAddr,
	})

	ctx, cancel := context.WithCancelCause(r.Context())
	defer cancel(nil)

	err = session.Activate()
	if err != nil {
		log.Error("Activate session", errors.Trace(err), nil)
		c.Close(websocket.StatusInternalError, "")

		return
	}

	wss.registry.Add(session)
	log.Info("Connected", nil)

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		err := session.WriteLoop(ctx, c, wss.writeTimeout())
		if err != nil && ctx.Err() == nil {
			cancel(errors.Annotate(err, "write loop"))

			return
		}

		cancel(nil)
	}()

	relays := make(chan string, wss.relayBuffer())

	go func() {
		defer wg.Done()

		wss.relayLoop(ctx, relays)
	}()

	var pinger *Pinger

	if wss.config.PingInterval > 0 {
		pinger = NewPinger(ctx, wss.config.PingInterval, func(ctx context.Context) error {
			ctx, cancelPing := context.WithTimeout(ctx, wss.writeTimeout())
			defer cancelPing()

			return errors.Annotate(c.Ping(ctx), "ping")
		}, func(err error) {
			cancel(errors.Annotate(err, "keep-alive"))
		})
	}

	err = wss.readLoop(ctx, log, c, relays)

	wss.registry.Remove(session.ID())
	session.Close()
	cancel(nil)

	wg.Wait()

	if pinger != nil {
		<-pinger.Done()
	}

	if err != nil {
		log.Error("Session error", errors.Trace(err), nil)
		c.Close(websocket.StatusInternalError, "")
	} else {
		c.Close(websocket.StatusNormalClosure, "")
	}

	log.Info("Disconnected", logger.Ctx{
		"duration": time.Since(start).String(),
	})
}

// relayLoop hands queued client text to the relayer one message at a time,
// so relays from one client reach the peer in arrival order.
func (wss *WSS) relayLoop(ctx context.Context, relays <-chan string) {
	for {
		select {
		case text := <-relays:
			wss.relayer.Relay(ctx, text)
		case <-ctx.Done():
			return
		}
	}
}

// readLoop queues text frames for relaying in arrival order. It keeps
// reading while a relay is in flight so pongs and close frames are handled.
// It returns nil when the client or the server closed the session normally.
func (wss *WSS) readLoop(
	ctx context.Context,
	log logger.Logger,
	c *websocket.Conn,
	relays chan<- string,
) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return wss.readError(ctx, err)
		}

		prometheusWSMessagesReceivedTotal.Inc()

		if typ != websocket.MessageText {
			prometheusWSMessagesIgnoredTotal.Inc()
			log.Debug("Ignoring non-text frame", logger.Ctx{
				"type": typ.String(),
				"size": len(data),
			})

			continue
		}

		msg, err := message.Decode(message.DirectionClientToPeer, data)
		if err != nil {
			prometheusWSMessagesInvalidTotal.Inc()
			log.Warn("Dropping invalid text frame", logger.Ctx{
				"error": err.Error(),
			})

			continue
		}

		select {
		case relays <- msg.Text():
		default:
			prometheusWSMessagesDroppedTotal.Inc()
			log.Warn("Relay queue full, dropping message", logger.Ctx{
				"size": len(data),
			})
		}
	}
}

func (wss *WSS) readError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		// The writer and the pinger cancel with their error as the cause.
		if cause := context.Cause(ctx); cause != context.Canceled {
			return errors.Trace(cause)
		}

		return nil
	}

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return nil
	}

	return errors.Annotate(err, "read")
}

func (wss *WSS) writeTimeout() time.Duration {
	if wss.config.WriteTimeout > 0 {
		return wss.config.WriteTimeout
	}

	return 5 * time.Second
}

func (wss *WSS) relayBuffer() int {
	if wss.config.RelayBuffer > 0 {
		return wss.config.RelayBuffer
	}

	return 1
}
