package logformatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hiCozyty/zmq-bridge/server/logger"
)

// SessionIDKey is printed in its own bracket after the namespace instead of
// as a key=value pair, so per-session lines are easy to grep.
const SessionIDKey = "session_id"

const (
	timeLayout   = "2006-01-02 15:04:05"
	namespaceLen = 20
)

// LogFormatter formats entries for console output.
type LogFormatter struct{}

func New() *LogFormatter {
	return &LogFormatter{}
}

var _ logger.Formatter = &LogFormatter{}

func (f *LogFormatter) Format(message logger.Message) ([]byte, error) {
	ctx := message.Ctx

	keys := make([]string, 0, len(ctx))

	for k := range ctx {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var (
		b         strings.Builder
		sessionID string
	)

	for _, k := range keys {
		v := ctx[k]

		if k == SessionIDKey {
			sessionID = fmt.Sprintf("%s", v)

			continue
		}

		fmt.Fprintf(&b, " %s=%+v", k, v)
	}

	namespace := message.Namespace
	if len(namespace) > namespaceLen {
		namespace = namespace[len(namespace)-namespaceLen:]
	}

	body := strings.TrimRight(message.Body, "\n")

	var line string

	if sessionID != "" {
		line = fmt.Sprintf("[%s] %5s [%20s] [%s] %s%s\n",
			message.Timestamp.Format(timeLayout), message.Level, namespace, sessionID, body, b.String())
	} else {
		line = fmt.Sprintf("[%s] %5s [%20s] %s%s\n",
			message.Timestamp.Format(timeLayout), message.Level, namespace, body, b.String())
	}

	return []byte(line), nil
}
