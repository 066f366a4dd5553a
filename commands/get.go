package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uhppoted/sheets-caspio/log"
	"github.com/uhppoted/sheets-caspio/sheets"
	"github.com/uhppoted/sheets-caspio/transfer"
)

var GetCmd = Get{
	command: command{
		config:      DEFAULT_CONFIG,
		credentials: "",
		tokens:      "",
		url:         "",
		worksheet:   "",
		debug:       false,
	},

	file: time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the mapped rows of a Google Sheets worksheet and stores them to a local file"
}

func (cmd *Get) Usage() string {
	return "--credentials <file> --url <url> --worksheet <name> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --url <URL> --worksheet <name> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the rows of a Google Sheets worksheet to a TSV file, with the columns")
	fmt.Println("  and field names that would be posted by 'transfer'")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug get --credentials "google-credentials.json" \`+"\n", APP)
	fmt.Println(`                            --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                            --worksheet "CPPhanTich" \`)
	fmt.Println(`                            --file "example.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-dd HHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := cmd.load()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
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

	ctx := context.Background()
	t := transfer.NewTransfer(&source, nil, logger)

	if !t.AuthenticateSource(ctx) {
		return transfer.ErrSourceAuth
	}

	rows, _ := t.ReadRows(ctx, cfg.Google.Sheet, cfg.Google.Worksheet)
	if len(rows) == 0 {
		return fmt.Errorf("no data in spreadsheet/worksheet")
	}

	tmp, err := os.CreateTemp(os.TempDir(), APP)
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := rowsToTSV(tmp, rows, transfer.FieldMapping(cfg.Transfer.Mapping)); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	logger.Sugar().Infof("Retrieved %d rows to file %s", len(rows), cmd.file)

	return nil
}
