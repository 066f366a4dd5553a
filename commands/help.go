package commands

import (
	"flag"
	"fmt"
)

// Help is the 'help' command, listing the available commands or describing
// a single command in detail.
type Help struct {
	cli []Command
}

func NewHelp(cli []Command) *Help {
	return &Help{
		cli: cli,
	}
}

func (h *Help) Name() string {
	return "help"
}

func (h *Help) Description() string {
	return "Displays the help for a command"
}

func (h *Help) Usage() string {
	return "<command>"
}

func (h *Help) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s help <command>\n", APP)
	fmt.Println()
	fmt.Println("  Displays the detailed help for a command")
	fmt.Println()
}

func (h *Help) FlagSet() *flag.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h *Help) Execute(args ...any) error {
	if len(flag.Args()) > 1 {
		name := flag.Arg(1)
		if name == h.Name() {
			h.Help()
			return nil
		}

		for _, c := range h.cli {
			if c.Name() == name {
				c.Help()
				return nil
			}
		}

		return fmt.Errorf("invalid command: %v", name)
	}

	h.usage()

	return nil
}

func (h *Help) usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] <command> [options]\n", APP)
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println()

	for _, c := range h.cli {
		fmt.Printf("    %-10s %s\n", c.Name(), c.Description())
	}
	fmt.Printf("    %-10s %s\n", h.Name(), h.Description())

	fmt.Println()
	fmt.Println("  Options:")
	fmt.Println("    --debug    Enable debugging information")
	fmt.Println()
	fmt.Printf("  Use '%s help <command>' for command specific help\n", APP)
	fmt.Println()
}
