package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/uhppoted/sheets-caspio/commands"
)

var cli = []commands.Command{
	&commands.VersionCmd,
	&commands.TransferCmd,
	&commands.GetCmd,
	&commands.AuthoriseCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	help := commands.NewHelp(cli)

	cmd, err := commands.Parse(append(cli, help), flag.Args())
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	// ... no command runs a transfer with the configured defaults
	if cmd == nil {
		cmd = &commands.TransferCmd
	}

	if err = cmd.Execute(&options); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}
