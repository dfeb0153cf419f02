package logger

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Message is a single log entry handed to a Formatter.
type Message struct {
	Timestamp time.Time
	Namespace string
	Level     Level
	Body      string
	Ctx       Ctx
}

// Formatter serializes a Message before it is written.
type Formatter interface {
	Format(message Message) ([]byte, error)
}

type StringFormatterParams struct {
	// DateLayout is passed to time.Time.Format. Defaults to
	// "2006-01-02 15:04:05".
	DateLayout string

	DisableContextKeySorting bool
}

// StringFormatter prints one line per entry:
//
//	<date> <level> [<namespace>] <body> k1=v1 k2=v2
type StringFormatter struct {
	params StringFormatterParams
}

var _ Formatter = &StringFormatter{}

func NewStringFormatter(params StringFormatterParams) *StringFormatter {
	if params.DateLayout == "" {
		params.DateLayout = "2006-01-02 15:04:05"
	}

	return &StringFormatter{params: params}
}

func (f *StringFormatter) Format(message Message) ([]byte, error) {
	keys := make([]string, 0, len(message.Ctx))

	for k := range message.Ctx {
		keys = append(keys, k)
	}

	if !f.params.DisableContextKeySorting {
		sort.Strings(keys)
	}

	var b strings.Builder

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%+v", k, message.Ctx[k])
	}

	line := fmt.Sprintf("%s %5s [%20s] %s%s\n",
		message.Timestamp.Format(f.params.DateLayout),
		message.Level,
		message.Namespace,
		message.Body,
		b.String(),
	)

	return []byte(line), nil
}
