package cli

import (
	"context"

	"github.com/hiCozyty/zmq-bridge/server"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/transport"
	"github.com/hiCozyty/zmq-bridge/server/transport/zmqconn"
	"github.com/juju/errors"
)

func readConfig(configFile string) (server.Config, error) {
	configFiles := []string{}
	if configFile != "" {
		configFiles = append(configFiles, configFile)
	}

	c, err := server.ReadConfig(configFiles)

	return c, errors.Annotate(err, "read config")
}

// dialLink connects to the transport peer and starts the link owner.
func dialLink(ctx context.Context, log logger.Logger, c server.TransportConfig) (*transport.Link, error) {
	log = log.WithNamespaceAppended("transport")

	conn, err := zmqconn.Dial(ctx, log, zmqconn.Params{
		Address:        c.Address,
		Linger:         c.Linger,
		Immediate:      c.Immediate,
		SendHWM:        c.SendHWM,
		RecvHWM:        c.RecvHWM,
		SendTimeout:    c.SendTimeout,
		ConnectTimeout: c.ConnectTimeout,
	})
	if err != nil {
		return nil, errors.Annotate(err, "dial transport")
	}

	link := transport.NewLink(transport.LinkParams{
		Conn:         conn,
		Log:          log,
		SendHWM:      c.SendHWM,
		RecvHWM:      c.RecvHWM,
		PollInterval: c.PollInterval,
		ReplyTimeout: c.ReplyTimeout,
	})

	return link, nil
}
