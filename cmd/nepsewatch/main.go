// Command nepsewatch runs one-off quote cycles and maintenance tasks against
// the market page and the portfolio store.
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
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.StringVar(&configPath, "config", "", "path to nepsewatch.toml (defaults to NEPSEWATCH_CONFIG, then the binary dir)")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
