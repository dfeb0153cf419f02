package main

import (
	"context"
	"os"

	"github.com/hiCozyty/zmq-bridge/server/cli"
	"github.com/hiCozyty/zmq-bridge/server/logformatter"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/hiCozyty/zmq-bridge/server/multierr"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

const gitDescribe string = "v0.0.0"

func start(ctx context.Context, log logger.Logger, args []string) error {
	err := cli.Exec(ctx, cli.Props{
		Log:     log,
		Version: gitDescribe,
		Args:    args,
		Stdout:  os.Stdout,
	})

	return errors.Trace(err)
}

func main() {
	log := logger.New().
		WithConfig(
			logger.NewConfig(logger.ConfigMap{
				"**:registry": logger.LevelWarn,
				"**:probe":    logger.LevelWarn,
				"":            logger.LevelInfo,
			}),
		).
		WithConfig(logger.NewConfigFromString(os.Getenv("ZMQBRIDGE_LOG"))).
		WithFormatter(logformatter.New()).
		WithNamespaceAppended("main")

	err := start(context.Background(), log, os.Args[1:])

	if multierr.Is(err, pflag.ErrHelp) {
		os.Exit(1)
	} else if err != nil {
		log.Error("Command error", errors.Trace(err), nil)
		os.Exit(1)
	}
}
