package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"

	"github.com/tw-accounting/twacc/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	config.LoadEnvFile()
	status := run(ctx, os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	stop()
	os.Exit(int(status))
}

// stdio is where commands read prompts from and write results to.
type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// run dispatches args to a subcommand. Without arguments the TUI starts.
func run(ctx context.Context, args []string, std stdio) subcommands.ExitStatus {
	fs := flag.NewFlagSet(path.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(std.err)
	commander := subcommands.NewCommander(fs, "twacc")
	commander.Output = std.out
	commander.Error = std.err

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&tuiCmd{io: std}, "")
	commander.Register(&versionCmd{io: std}, "")

	commander.Register(&loginCmd{io: std}, "session")
	commander.Register(&logoutCmd{io: std}, "session")
	commander.Register(&registerCmd{io: std}, "session")
	commander.Register(&whoamiCmd{io: std}, "session")

	commander.Register(&accountsCmd{io: std}, "records")
	commander.Register(&transactionsCmd{io: std}, "records")
	commander.Register(&ratesCmd{io: std}, "records")
	commander.Register(&walletCmd{io: std}, "records")
	commander.Register(&dashboardCmd{io: std}, "records")
	commander.Register(&reportCmd{io: std}, "records")

	if len(args) == 0 {
		args = []string{"tui"}
	}
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx)
}

// fail reports err the way every command does and returns the failure status.
func fail(std stdio, err error) subcommands.ExitStatus {
	fmt.Fprintf(std.err, "error: %v\n", err)
	return subcommands.ExitFailure
}

type versionCmd struct{ io stdio }

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print the client version" }
func (*versionCmd) Usage() string            { return "version\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(c.io.out, "twacc %s\n", version)
	return subcommands.ExitSuccess
}
