package app

import (
	"log/slog"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

const (
	VERBOSE_FLAG = "v"
)

var Verbose bool

func AllCommands() *commander.Command {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "beam search over markov chains",
		Subcommands: []*commander.Command{
			BeamCmd(),
			SampleCmd(),
			ValidateCmd(),
			ChartCmd(),
		},
		Flag: *flag.NewFlagSet("app", flag.ExitOnError),
	}
	for _, app := range cmd.Subcommands {
		app.Run = NewAppWrapCommand(app.Run)
		app.Flag.BoolVar(&Verbose, VERBOSE_FLAG, false, "Log beam internals to stderr")
	}
	return cmd
}

func InitCommand(cmd *commander.Command, args []string) {
	level := slog.LevelInfo
	if Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func NewAppWrapCommand(f func(cmd *commander.Command, args []string) error) func(cmd *commander.Command, args []string) error {
	wrapped := func(cmd *commander.Command, args []string) error {
		InitCommand(cmd, args)
		return f(cmd, args)
	}
	return wrapped
}
