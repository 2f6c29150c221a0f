package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&migrateCmd{}, "store")
	commander.Register(&registerCmd{}, "store")
	commander.Register(&tokenCmd{}, "store")

	commander.Register(&summaryCmd{}, "remote")
	commander.Register(&listCmd{}, "remote")
	commander.Register(&seedCmd{}, "remote")
	commander.Register(&stressCmd{}, "remote")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
