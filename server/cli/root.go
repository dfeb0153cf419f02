package cli

import (
	"github.com/hiCozyty/zmq-bridge/server/command"
)

func NewRootCommand(props Props) *command.Command {
	return command.New(command.Params{
		Name: "zmq-bridge",
		Desc: "Relays text between a ZeroMQ peer and websocket clients.",
		SubCommands: []*command.Command{
			newServerCmd(props),
			newProbeCmd(props),
			newVersionCmd(props),
		},
		DefaultSubCommand: "server",
	})
}
