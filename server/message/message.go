// Package message defines the text payloads relayed by the bridge.
package message

import (
	"unicode/utf8"

	"github.com/juju/errors"
)

// ErrInvalidUTF8 is returned when a payload is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("invalid utf-8")

// Direction tells which way a Message travels through the bridge.
type Direction int

const (
	// DirectionClientToPeer is text sent by a websocket client.
	DirectionClientToPeer Direction = iota + 1
	// DirectionPeerToClients is text received from the transport peer.
	DirectionPeerToClients
)

func (d Direction) String() string {
	switch d {
	case DirectionClientToPeer:
		return "ws->zmq"
	case DirectionPeerToClients:
		return "zmq->ws"
	default:
		return "unknown"
	}
}

// Message is immutable once created.
type Message struct {
	direction Direction
	text      string
}

func New(direction Direction, text string) Message {
	return Message{
		direction: direction,
		text:      text,
	}
}

// Decode validates data as UTF-8 and wraps it in a Message.
func Decode(direction Direction, data []byte) (Message, error) {
	if !utf8.Valid(data) {
		return Message{}, errors.Annotatef(ErrInvalidUTF8, "%s: %d bytes", direction, len(data))
	}

	return New(direction, string(data)), nil
}

func (m Message) Direction() Direction {
	return m.direction
}

func (m Message) Text() string {
	return m.text
}
