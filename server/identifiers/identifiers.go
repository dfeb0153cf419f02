package identifiers

import "github.com/hiCozyty/zmq-bridge/server/uuid"

// SessionID identifies one websocket session for its whole lifetime. It is
// assigned when the connection is accepted and never reused.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

func (s SessionID) String() string {
	return string(s)
}

type SessionIDs []SessionID

func (s SessionIDs) Len() int           { return len(s) }
func (s SessionIDs) Less(i, j int) bool { return s[i] < s[j] }
func (s SessionIDs) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
