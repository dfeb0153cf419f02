package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/command"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

var ErrInvalidCount = errors.New("count must be a positive integer")

// probeHandler talks to the transport peer directly, without a websocket
// server in between. It sends one command, prints the reply and then every
// message the peer publishes until --wait elapses.
type probeHandler struct {
	args struct {
		config  string
		address string
		wait    time.Duration
	}

	log logger.Logger
	out io.Writer
}

func (h *probeHandler) RegisterFlags(c *command.Command, flags *pflag.FlagSet) {
	flags.StringVarP(&h.args.config, "config", "c", "", "config file to use")
	flags.StringVarP(&h.args.address, "address", "a", "", "transport address, overrides the config (example: tcp://127.0.0.1:5555)")
	flags.DurationVarP(&h.args.wait, "wait", "w", 5*time.Second, "how long to print messages after the reply")
}

func subscribeText(symbol string) string {
	return "subscribe:" + symbol
}

func historyText(symbol, timeframe, count string) (string, error) {
	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return "", errors.Annotatef(ErrInvalidCount, "count: %q", count)
	}

	return fmt.Sprintf("history:%s:%s:%d", symbol, timeframe, n), nil
}

func (h *probeHandler) run(ctx context.Context, text string) error {
	c, err := readConfig(h.args.config)
	if err != nil {
		return errors.Trace(err)
	}

	if h.args.address != "" {
		c.Transport.Address = h.args.address
	}

	link, err := dialLink(ctx, h.log, c.Transport)
	if err != nil {
		return errors.Trace(err)
	}

	defer link.Close()

	h.log.Info("Send", logger.Ctx{
		"text": text,
	})

	reply, err := link.SendAndAwaitReply(ctx, text)
	if err != nil {
		return errors.Annotatef(err, "send: %q", text)
	}

	fmt.Fprintf(h.out, "reply: %s\n", reply)

	timer := time.NewTimer(h.args.wait)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-link.Messages():
			if !ok {
				return nil
			}

			fmt.Fprintf(h.out, "message: %s\n", msg.Text())
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func newProbeCmd(props Props) *command.Command {
	h := &probeHandler{
		log: props.Log.WithNamespaceAppended("probe"),
		out: props.Stdout,
	}

	return command.New(command.Params{
		Name:         "probe",
		Desc:         "Sends one command to the transport peer and prints what comes back",
		FlagRegistry: h,
		SubCommands: []*command.Command{
			command.New(command.Params{
				Name:      "subscribe",
				Desc:      "Subscribes to a symbol",
				ArgsUsage: "<symbol>",
				MinArgs:   1,
				Handler: command.HandlerFunc(func(ctx context.Context, args []string) error {
					return h.run(ctx, subscribeText(args[0]))
				}),
			}),
			command.New(command.Params{
				Name:      "history",
				Desc:      "Requests historical candles for a symbol",
				ArgsUsage: "<symbol> <timeframe> <count>",
				MinArgs:   3,
				Handler: command.HandlerFunc(func(ctx context.Context, args []string) error {
					text, err := historyText(args[0], args[1], args[2])
					if err != nil {
						return errors.Trace(err)
					}

					return h.run(ctx, text)
				}),
			}),
			command.New(command.Params{
				Name:      "send",
				Desc:      "Sends raw text",
				ArgsUsage: "<text>...",
				MinArgs:   1,
				Handler: command.HandlerFunc(func(ctx context.Context, args []string) error {
					return h.run(ctx, strings.Join(args, " "))
				}),
			}),
		},
	})
}
