// Command ledgerctl queries and trades against a running miniledger server.
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
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&stocksCmd{}, "catalog")

	commander.Register(&userCmd{}, "users")
	commander.Register(&portfolioCmd{}, "users")
	commander.Register(&tradesCmd{}, "users")

	commander.Register(&buyCmd{}, "trading")
	commander.Register(&sellCmd{}, "trading")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
