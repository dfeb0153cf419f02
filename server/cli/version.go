package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hiCozyty/zmq-bridge/server/command"
	"github.com/juju/errors"
	zmq "github.com/pebbe/zmq4"
)

type versionHandler struct {
	props Props
}

// Handle prints the bridge version along with the Go runtime and the linked
// libzmq, since the transport behaviour depends on both.
func (v *versionHandler) Handle(ctx context.Context, args []string) error {
	major, minor, patch := zmq.Version()

	_, err := fmt.Fprintf(v.props.Stdout, "zmq-bridge %s (%s, libzmq %d.%d.%d)\n",
		v.props.Version, runtime.Version(), major, minor, patch)

	return errors.Trace(err)
}

func newVersionCmd(props Props) *command.Command {
	return command.New(command.Params{
		Name:    "version",
		Desc:    "Print the bridge, Go and libzmq versions",
		Handler: &versionHandler{props: props},
	})
}
