// Command mywallet-meroshare runs MeroShare automation calls from a shell.
// Results are printed as JSON on stdout; logs go to stderr
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"mywallet/internal/platform/config"
	"mywallet/internal/platform/logger"

	"github.com/google/subcommands"
)

func main() {
	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	opt.Component = "cli"
	logger.Init(opt)

	a := newApp(config.New(), os.Stdout)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range a.commands() {
		commander.Register(c, "meroshare")
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}
