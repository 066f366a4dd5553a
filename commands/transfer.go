package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uhppoted/sheets-caspio/caspio"
	"github.com/uhppoted/sheets-caspio/config"
	"github.com/uhppoted/sheets-caspio/log"
	"github.com/uhppoted/sheets-caspio/sheets"
	"github.com/uhppoted/sheets-caspio/transfer"
)

var TransferCmd = Transfer{
	command: command{
		config:      DEFAULT_CONFIG,
		credentials: "",
		tokens:      "",
		url:         "",
		worksheet:   "",
		debug:       false,
	},
}

type Transfer struct {
	command
	account string
	table   string
	delay   string
	record  string
}

func (cmd *Transfer) Name() string {
	return "transfer"
}

func (cmd *Transfer) Description() string {
	return "Copies the rows of a Google Sheets worksheet to a Caspio table"
}

func (cmd *Transfer) Usage() string {
	return "--credentials <file> --url <url> --worksheet <name> --table <table>"
}

func (cmd *Transfer) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] transfer [options]\n", APP)
	fmt.Println()
	fmt.Println("  Reads every data row of a Google Sheets worksheet and inserts it as a record")
	fmt.Println("  in a Caspio table, printing a summary of the transferred rows on completion.")
	fmt.Println()
	fmt.Println("  Unset options default to the configuration file and then the CASPIO_* and")
	fmt.Println("  GOOGLE_CREDENTIALS, SHEET_URL and WORKSHEET_NAME environment variables.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s transfer --credentials "google-credentials.json" \`+"\n", APP)
	fmt.Println(`                          --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                          --worksheet "CPPhanTich" \`)
	fmt.Println(`                          --table "NganSachPT"`)
	fmt.Println()
}

func (cmd *Transfer) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("transfer")

	flagset.StringVar(&cmd.account, "account", cmd.account, "Caspio account ID or URL. Defaults to $CASPIO_ACCOUNT_ID")
	flagset.StringVar(&cmd.table, "table", cmd.table, "Caspio table name. Defaults to $CASPIO_TABLE_NAME")
	flagset.StringVar(&cmd.delay, "delay", cmd.delay, "Pause after each record e.g. 250ms. Defaults to 100ms")
	flagset.StringVar(&cmd.record, "record", cmd.record, "Directory for recording Caspio requests and responses")

	return flagset
}

func (cmd *Transfer) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := cmd.configure()
	if err != nil {
		return err
	}

	logger := log.NewLogger(cmd.debug, os.Stderr)
	defer logger.Sync()

	source := sheets.Source{
		Credentials: cfg.Google.Credentials,
		Tokens:      cfg.Google.Tokens,
		Scopes:      sheets.Scopes,
		Log:         logger,
	}

	opts := []caspio.Option{caspio.WithLogger(logger)}
	if cmd.record != "" {
		opts = append(opts, caspio.WithRecording(cmd.record))
	}

	sink := caspio.NewClient(cfg.Caspio.Account, cfg.Caspio.ClientID, cfg.Caspio.ClientSecret, cfg.Caspio.Table, opts...)

	t := transfer.NewTransfer(&source, sink, logger)
	t.Delay = cfg.Transfer.Delay

	logger.Info("transfer",
		zap.String("sheet", cfg.Google.Sheet),
		zap.String("worksheet", cfg.Google.Worksheet),
		zap.String("table", cfg.Caspio.Table),
		zap.Duration("delay", cfg.Transfer.Delay))

	summary, err := t.Run(context.Background(), cfg.Google.Sheet, cfg.Google.Worksheet, transfer.FieldMapping(cfg.Transfer.Mapping))
	if err != nil {
		return err
	}

	logger.Info("transfer complete",
		zap.Int("attempted", summary.Attempted),
		zap.Int("successful", len(summary.Successful)),
		zap.Int("failed", summary.Failed()))

	return nil
}

// configure loads the configuration and applies the transfer specific
// command line overrides.
func (cmd *Transfer) configure() (*config.Config, error) {
	cfg, err := cmd.load()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cmd.account) != "" {
		cfg.Caspio.Account = cmd.account
	}

	if strings.TrimSpace(cmd.table) != "" {
		cfg.Caspio.Table = cmd.table
	}

	if strings.TrimSpace(cmd.delay) != "" {
		delay, err := time.ParseDuration(cmd.delay)
		if err != nil {
			return nil, fmt.Errorf("invalid --delay '%s' (%v)", cmd.delay, err)
		}

		cfg.Transfer.Delay = delay
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
