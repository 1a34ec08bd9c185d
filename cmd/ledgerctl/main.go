// Command ledgerctl edits and reports on the ledger store directly, without
// going through the HTTP server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"moneytracker/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "ledger")
	}

	flag.BoolVar(&plain, "plain", false, "print raw markdown instead of rendering it for the terminal")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
