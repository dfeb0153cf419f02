package test

import (
	"github.com/hiCozyty/zmq-bridge/server/logformatter"
	"github.com/hiCozyty/zmq-bridge/server/logger"
)

// NewLogger returns a logger configured by ZMQBRIDGE_LOG, disabled when the
// variable is unset.
func NewLogger() logger.Logger {
	return logger.NewFromEnv("ZMQBRIDGE_LOG").WithFormatter(logformatter.New())
}
