package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/hiCozyty/zmq-bridge/server"
	"github.com/hiCozyty/zmq-bridge/server/bridge"
	"github.com/hiCozyty/zmq-bridge/server/command"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/multierr"
	"github.com/hiCozyty/zmq-bridge/server/registry"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

type serverHandler struct {
	args struct {
		config    string
		pprofAddr string
	}

	log   logger.Logger
	props Props
}

func (h *serverHandler) RegisterFlags(c *command.Command, flags *pflag.FlagSet) {
	flags.StringVarP(&h.args.config, "config", "c", "", "config file to use")
	flags.StringVar(&h.args.pprofAddr, "pprof-addr", "", "when set, will enable pprof server (example: 127.0.0.1:6060)")
}

// Handle fails before binding the listener when the configuration, the TLS
// certificate or the transport peer is not usable.
func (h *serverHandler) Handle(ctx context.Context, args []string) (err error) {
	c, err := readConfig(h.args.config)
	if err != nil {
		return errors.Trace(err)
	}

	log := h.log

	log.Info(fmt.Sprintf("Using config: %+v", c), nil)

	tlsConfig, err := server.LoadTLSConfig(c.TLS.Cert, c.TLS.Key)
	if err != nil {
		return errors.Annotate(err, "load tls")
	}

	link, err := dialLink(ctx, log, c.Transport)
	if err != nil {
		return errors.Trace(err)
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup

	defer func() {
		cancel()
		wg.Wait()

		errs := multierr.New()
		errs.Add(err)
		errs.Add(link.Close())
		err = errs.Err()
	}()

	reg := registry.New(log)
	br := bridge.New(log, link, reg)

	wg.Add(1)

	go func() {
		defer wg.Done()

		br.Run(ctx)
	}()

	wss := server.NewWSS(server.WSSParams{
		Log:      log,
		Relayer:  br,
		Registry: reg,
		Session:  c.Session,
	})

	mux := server.NewMux(server.MuxParams{
		Log:        log,
		WSPath:     c.WSPath,
		WSS:        wss,
		Sessions:   reg,
		Transport:  link,
		Prometheus: c.Prometheus,
	})

	if pprofAddr := h.args.pprofAddr; pprofAddr != "" {
		pprofListener, err := net.Listen("tcp", pprofAddr)
		if err != nil {
			return errors.Annotatef(err, "listen pprof: %q", pprofAddr)
		}

		log.Info(fmt.Sprintf("Listen pprof %s", pprofAddr), logger.Ctx{
			"local_addr": pprofAddr,
		})

		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := server.NewPProf().Start(ctx, pprofListener); err != nil {
				log.Error("PProf server", errors.Trace(err), nil)
			}
		}()
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(
		c.BindHost,
		strconv.Itoa(c.BindPort),
	))
	if err != nil {
		return errors.Annotate(err, "listen")
	}

	defer listener.Close()

	addr, _ := listener.Addr().(*net.TCPAddr)
	log.Info("Listen", logger.Ctx{
		"local_addr": addr,
		"ws_path":    c.WSPath,
	})

	srv := server.New(server.Params{
		TLSConfig: tlsConfig,
	}, mux)

	err = srv.Start(ctx, listener)

	return errors.Trace(err)
}

func newServerCmd(props Props) *command.Command {
	h := &serverHandler{
		log:   props.Log.WithNamespaceAppended("server"),
		props: props,
	}

	return command.New(command.Params{
		Name:         "server",
		Desc:         "Starts the bridge server",
		FlagRegistry: h,
		Handler:      h,
	})
}
