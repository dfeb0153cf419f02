// Package bridge moves text between websocket sessions and the transport
// peer: client text is relayed to the peer and unsolicited peer messages are
// broadcast to every session.
package bridge

import (
	"context"

	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/message"
	"github.com/juju/errors"
)

type Link interface {
	SendAndAwaitReply(ctx context.Context, text string) (string, error)
	Messages() <-chan message.Message
}

type Broadcaster interface {
	Broadcast(text string) int
}

type Bridge struct {
	log      logger.Logger
	link     Link
	registry Broadcaster
}

func New(log logger.Logger, link Link, registry Broadcaster) *Bridge {
	return &Bridge{
		log:      log.WithNamespaceAppended("bridge"),
		link:     link,
		registry: registry,
	}
}

// Relay sends text to the peer and waits for its reply. The reply is only
// logged. Failures are logged and counted, the caller is never told.
func (b *Bridge) Relay(ctx context.Context, text string) {
	log := b.log.WithCtx(logger.Ctx{
		"direction": message.DirectionClientToPeer,
	})

	prometheusRelaysTotal.Inc()

	reply, err := b.link.SendAndAwaitReply(ctx, text)
	if err != nil {
		prometheusRelayErrorsTotal.Inc()

		log.Error("Relay failed", errors.Trace(err), logger.Ctx{
			"text": text,
		})

		return
	}

	log.Info("Relayed", logger.Ctx{
		"text":  text,
		"reply": reply,
	})
}

// Run broadcasts peer messages until ctx is done or the link stops
// publishing.
func (b *Bridge) Run(ctx context.Context) {
	b.log.Info("Broadcast loop started", nil)
	defer b.log.Info("Broadcast loop stopped", nil)

	messages := b.link.Messages()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}

			delivered := b.registry.Broadcast(msg.Text())

			prometheusBroadcastsTotal.Inc()

			b.log.Info("Broadcast", logger.Ctx{
				"direction": msg.Direction(),
				"text":      msg.Text(),
				"delivered": delivered,
			})
		case <-ctx.Done():
			return
		}
	}
}
