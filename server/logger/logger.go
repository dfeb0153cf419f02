package logger

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger writes levelled, namespaced entries. Every With* method returns a
// copy and leaves the receiver untouched, so a Logger can be shared freely
// between goroutines.
type Logger interface {
	Ctx() Ctx
	Namespace() string
	Level() Level
	IsLevelEnabled(level Level) bool

	WithCtx(ctx Ctx) Logger
	WithConfig(config Config) Logger
	WithFormatter(formatter Formatter) Logger
	WithWriter(writer io.Writer) Logger
	WithNamespace(namespace string) Logger
	WithNamespaceAppended(namespace string) Logger

	Trace(message string, ctx Ctx) (int, error)
	Debug(message string, ctx Ctx) (int, error)
	Info(message string, ctx Ctx) (int, error)
	Warn(message string, ctx Ctx) (int, error)
	Error(message string, err error, ctx Ctx) (int, error)
}

type logger struct {
	config    Config
	ctx       Ctx
	formatter Formatter
	namespace string
	writer    io.Writer
}

var _ Logger = &logger{}

// New returns a disabled Logger writing to stderr. Use WithConfig to enable
// levels for namespaces.
func New() Logger {
	return &logger{
		config:    LevelDisabled,
		formatter: NewStringFormatter(StringFormatterParams{}),
		writer:    os.Stderr,
	}
}

// NewFromEnv reads the level configuration from the environment variable
// key, for example "**:transport:debug,info".
func NewFromEnv(key string) Logger {
	return New().WithConfig(NewConfigFromString(os.Getenv(key)))
}

func (l *logger) clone() *logger {
	c := *l

	return &c
}

func (l *logger) Ctx() Ctx {
	return l.ctx
}

func (l *logger) Namespace() string {
	return l.namespace
}

func (l *logger) Level() Level {
	return l.config.LevelForNamespace(l.namespace)
}

func (l *logger) IsLevelEnabled(level Level) bool {
	configured := l.Level()

	return configured > LevelDisabled && level <= configured
}

func (l *logger) WithCtx(ctx Ctx) Logger {
	c := l.clone()
	c.ctx = l.ctx.WithCtx(ctx)

	return c
}

// WithConfig ignores a nil config so that optional sources such as an unset
// environment variable do not wipe the previous configuration.
func (l *logger) WithConfig(config Config) Logger {
	if config == nil {
		return l
	}

	c := l.clone()
	c.config = config

	return c
}

func (l *logger) WithFormatter(formatter Formatter) Logger {
	c := l.clone()
	c.formatter = formatter

	return c
}

func (l *logger) WithWriter(writer io.Writer) Logger {
	c := l.clone()
	c.writer = writer

	return c
}

func (l *logger) WithNamespace(namespace string) Logger {
	c := l.clone()
	c.namespace = namespace

	return c
}

func (l *logger) WithNamespaceAppended(namespace string) Logger {
	if l.namespace != "" {
		namespace = l.namespace + ":" + namespace
	}

	return l.WithNamespace(namespace)
}

func (l *logger) Trace(message string, ctx Ctx) (int, error) {
	return l.log(LevelTrace, message, ctx)
}

func (l *logger) Debug(message string, ctx Ctx) (int, error) {
	return l.log(LevelDebug, message, ctx)
}

func (l *logger) Info(message string, ctx Ctx) (int, error) {
	return l.log(LevelInfo, message, ctx)
}

func (l *logger) Warn(message string, ctx Ctx) (int, error) {
	return l.log(LevelWarn, message, ctx)
}

// Error appends err to the message using %+v so that juju stack traces are
// printed.
func (l *logger) Error(message string, err error, ctx Ctx) (int, error) {
	if err != nil {
		if message == "" {
			message = fmt.Sprintf("%+v", err)
		} else {
			message = fmt.Sprintf("%s: %+v", message, err)
		}
	}

	return l.log(LevelError, message, ctx)
}

func (l *logger) log(level Level, body string, ctx Ctx) (int, error) {
	if !l.IsLevelEnabled(level) {
		return 0, nil
	}

	b, err := l.formatter.Format(Message{
		Timestamp: time.Now(),
		Namespace: l.namespace,
		Level:     level,
		Body:      body,
		Ctx:       l.ctx.WithCtx(ctx),
	})
	if err != nil {
		return 0, fmt.Errorf("log format error: %w", err)
	}

	n, err := l.writer.Write(b)
	if err != nil {
		return n, fmt.Errorf("log write error: %w", err)
	}

	return n, nil
}
