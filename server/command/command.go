// Package command is a small subcommand framework on top of pflag.
package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrMissingArgs     = errors.New("missing arguments")
)

// Handler is command line handler.
type Handler interface {
	// Handle receives the context and the arguments leftover from parsing.
	Handle(ctx context.Context, args []string) error
}

// HandlerFunc defines a functional implementation of Handler.
type HandlerFunc func(ctx context.Context, args []string) error

// Handle implements Handler interface.
func (h HandlerFunc) Handle(ctx context.Context, args []string) error {
	return h(ctx, args)
}

// FlagRegistry contains optional methods for parsing CLI arguments.
type FlagRegistry interface {
	// RegisterFlags can be implemented to register custom flags.
	RegisterFlags(cmd *Command, flags *pflag.FlagSet)
}

// FlagRegistryFunc defines a functional implementation of FlagRegistry.
type FlagRegistryFunc func(cmd *Command, flags *pflag.FlagSet)

// RegisterFlags implements FlagRegistry.
func (f FlagRegistryFunc) RegisterFlags(cmd *Command, flags *pflag.FlagSet) {
	f(cmd, flags)
}

type Params struct {
	Name string
	Desc string
	// ArgsUsage describes positional arguments in the usage line, for example
	// "<symbol> <timeframe> <count>".
	ArgsUsage string
	// MinArgs is the minimum number of positional arguments passed to
	// Handler. Fewer arguments print usage and fail with ErrMissingArgs.
	MinArgs int

	FlagRegistry FlagRegistry
	Handler      Handler

	SubCommands []*Command
	// DefaultSubCommand runs when no subcommand is named, including when the
	// arguments start with a flag meant for it.
	DefaultSubCommand string
}

type Command struct {
	params      Params
	subCommands map[string]*Command
	writer      io.Writer
}

func New(params Params) *Command {
	subCommands := make(map[string]*Command, len(params.SubCommands))

	for _, cmd := range params.SubCommands {
		subCommands[cmd.Name()] = cmd
	}

	c := &Command{
		params:      params,
		subCommands: subCommands,
	}

	c.SetWriter(os.Stderr)

	return c
}

// SetWriter sets the destination of usage and command output for c and all
// of its subcommands.
func (c *Command) SetWriter(w io.Writer) {
	c.writer = w

	for _, s := range c.params.SubCommands {
		s.SetWriter(w)
	}
}

func (c *Command) Writer() io.Writer {
	return c.writer
}

func (c *Command) Name() string {
	return c.params.Name
}

func (c *Command) Desc() string {
	return c.params.Desc
}

func (c *Command) Usage(flags *pflag.FlagSet) {
	var b bytes.Buffer

	flagUsages := flags.FlagUsages()

	hasOptions := flagUsages != ""
	hasSubCommands := len(c.params.SubCommands) > 0

	b.WriteString("Usage: ")
	b.WriteString(c.params.Name)

	if hasOptions {
		b.WriteString(" [OPTIONS]")
	}

	if hasSubCommands {
		b.WriteString(" [COMMAND] [ARG...]")
	}

	if c.params.ArgsUsage != "" {
		b.WriteString(" ")
		b.WriteString(c.params.ArgsUsage)
	}

	fmt.Fprintf(&b, "\n%s\n", c.params.Desc)

	if hasOptions {
		fmt.Fprintf(&b, "\nOptions:\n%s\n", flagUsages)
	}

	if hasSubCommands {
		b.WriteString("\nCommands:\n")

		maxLen := 12
		for _, s := range c.params.SubCommands {
			if ll := len(s.Name()); ll > maxLen {
				maxLen = ll
			}
		}

		for _, s := range c.params.SubCommands {
			desc := s.Desc()
			if s.Name() == c.params.DefaultSubCommand {
				desc += " (default)"
			}

			fmt.Fprintf(&b, "  %-*s %s\n", maxLen, s.Name(), desc)
		}

		b.WriteString("\n")
	}

	_, _ = b.WriteTo(c.writer)
}

// Exec runs the command. SIGINT and SIGTERM cancel the context passed to
// the handlers.
func (c *Command) Exec(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return c.exec(ctx, args)
}

func (c *Command) exec(ctx context.Context, args []string) error {
	args = c.withDefaultSubCommand(args)

	flags := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)

	flags.SetOutput(c.writer)

	flags.Usage = func() {
		c.Usage(flags)
	}

	// Flags after the first positional argument belong to a subcommand.
	flags.SetInterspersed(false)

	if c.params.FlagRegistry != nil {
		c.params.FlagRegistry.RegisterFlags(c, flags)
	}

	if err := flags.Parse(args); err != nil {
		return errors.Annotatef(err, "parse args for command: %s", c.params.Name)
	}

	args = flags.Args()

	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	if len(args) > 0 && len(c.subCommands) > 0 {
		subName := args[0]

		subCommand, ok := c.subCommands[subName]
		if !ok {
			return errors.Annotatef(ErrCommandNotFound, "command: %s", subName)
		}

		return errors.Trace(subCommand.exec(ctx, args[1:]))
	}

	if c.params.Handler == nil {
		if len(c.subCommands) == 0 {
			return nil
		}

		c.Usage(flags)

		return errors.Annotatef(ErrMissingArgs, "command: %s: subcommand required", c.params.Name)
	}

	if len(args) < c.params.MinArgs {
		c.Usage(flags)

		return errors.Annotatef(ErrMissingArgs, "command: %s: want %d, got %d", c.params.Name, c.params.MinArgs, len(args))
	}

	return errors.Trace(c.params.Handler.Handle(ctx, args))
}

func (c *Command) withDefaultSubCommand(args []string) []string {
	if c.params.DefaultSubCommand == "" {
		return args
	}

	for _, arg := range args {
		if len(arg) > 0 && arg[0] != '-' {
			break
		}

		if arg == "-h" || arg == "--help" {
			return args
		}
	}

	if len(args) == 0 {
		return []string{c.params.DefaultSubCommand}
	}

	if first := args[0]; len(first) > 0 && first[0] == '-' {
		return append([]string{c.params.DefaultSubCommand}, args...)
	}

	return args
}
