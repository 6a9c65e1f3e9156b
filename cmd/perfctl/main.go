// Command perfctl is the operator tool for the performance agent: it seeds the
// return store, lists the metric vocabulary and sends chat turns to a server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// commands lists every perfctl subcommand
var commands = []subcommands.Command{
	&seedCmd{},
	&metricsCmd{},
	&askCmd{},
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
