package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/uhppoted/sheets-caspio/config"
)

const APP = "sheets-caspio"

type Options struct {
	Debug bool
}

// Command is a CLI sub-command. Execute is invoked with the global *Options
// as the first argument.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(args ...any) error
}

// command holds the options shared by every command that reads a spreadsheet.
type command struct {
	config      string
	credentials string
	tokens      string
	url         string
	worksheet   string
	debug       bool
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.config, "config", c.config, "YAML configuration file")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the Google 'credentials.json' file. Defaults to $GOOGLE_CREDENTIALS")
	flagset.StringVar(&c.tokens, "tokens", c.tokens, "Path for the Google OAuth2 token file (installed app credentials only)")
	flagset.StringVar(&c.url, "url", c.url, "Spreadsheet URL or key. Defaults to $SHEET_URL")
	flagset.StringVar(&c.worksheet, "worksheet", c.worksheet, "Worksheet name. Defaults to $WORKSHEET_NAME")

	return flagset
}

// load resolves the configuration and applies the command line overrides.
func (c *command) load() (*config.Config, error) {
	files := []string{}
	if c.config != "" {
		if _, err := os.Stat(c.config); err == nil || c.config != DEFAULT_CONFIG {
			files = append(files, c.config)
		}
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration (%v)", err)
	}

	if strings.TrimSpace(c.credentials) != "" {
		cfg.Google.Credentials = c.credentials
	}

	if strings.TrimSpace(c.tokens) != "" {
		cfg.Google.Tokens = c.tokens
	}

	if strings.TrimSpace(c.url) != "" {
		cfg.Google.Sheet = c.url
	}

	if strings.TrimSpace(c.worksheet) != "" {
		cfg.Google.Worksheet = c.worksheet
	}

	return cfg, nil
}

// Parse returns the command named by the first argument, with its flags parsed
// from the remaining arguments. Returns nil if there are no arguments.
func Parse(cli []Command, args []string) (Command, error) {
	if len(args) == 0 {
		return nil, nil
	}

	for _, cmd := range cli {
		if cmd.Name() == args[0] {
			flagset := cmd.FlagSet()
			if flagset == nil {
				return cmd, nil
			}

			if err := flagset.Parse(args[1:]); err != nil {
				return nil, err
			}

			return cmd, nil
		}
	}

	return nil, fmt.Errorf("invalid command: %v", args[0])
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flagset.VisitAll(func(f *flag.Flag) {
		count++
	})

	if count > 0 {
		fmt.Println("  Options:")
		flagset.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}
