package transport

import "github.com/juju/errors"

var (
	// ErrTimeout is returned by Conn.Recv when no message arrived in time.
	ErrTimeout = errors.New("timeout")

	// ErrLinkBusy means the request inbox is full. The request was dropped.
	ErrLinkBusy = errors.New("link busy")

	// ErrLinkClosed means the link owner is not running anymore. The request
	// was dropped.
	ErrLinkClosed = errors.New("link closed")

	// ErrReplyTimeout means the peer did not answer a request in time.
	ErrReplyTimeout = errors.New("reply timeout")
)
