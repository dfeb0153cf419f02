package transport

import "time"

// Conn is a message oriented connection to the peer. Implementations do not
// need to be safe for concurrent use: a Link calls them from its owner
// goroutine only.
type Conn interface {
	// Send writes one message. It may block up to an implementation defined
	// send timeout when the peer is not reachable.
	Send(data []byte) error

	// Recv waits up to timeout for one message and returns ErrTimeout when
	// nothing arrived in time.
	Recv(timeout time.Duration) ([]byte, error)

	Close() error
}
