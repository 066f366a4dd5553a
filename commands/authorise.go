package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/uhppoted/sheets-caspio/sheets"
)

var AuthoriseCmd = Authorise{
	command: command{
		config:      DEFAULT_CONFIG,
		credentials: "",
		tokens:      "",
		debug:       false,
	},

	in:  os.Stdin,
	out: os.Stdout,
}

type Authorise struct {
	command
	in  io.Reader
	out io.Writer
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises sheets-caspio to access Google Sheets with OAuth2 client credentials"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises sheets-caspio to access Google Sheets and Drive on behalf of a user and")
	fmt.Println("  saves the OAuth2 tokens for use by 'transfer' and 'get'. Service account keys")
	fmt.Println("  do not need to be authorised.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s authorise --credentials "credentials.json"`+"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.config, "config", cmd.config, "YAML configuration file")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the Google 'credentials.json' file. Defaults to $GOOGLE_CREDENTIALS")
	flagset.StringVar(&cmd.tokens, "tokens", cmd.tokens, "Path for the OAuth2 token file. Defaults to '<credentials>.tokens'")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := cmd.load()
	if err != nil {
		return err
	}

	// ... check parameters
	credentials := cfg.Google.Credentials
	if strings.TrimSpace(credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(credentials)
	if err != nil {
		return err
	}

	if sheets.IsServiceAccount(b) {
		fmt.Fprintf(cmd.out, "%s is a service account key - no authorisation required\n", credentials)
		return nil
	}

	config, err := sheets.OAuthConfig(credentials, sheets.Scopes...)
	if err != nil {
		return fmt.Errorf("invalid OAuth2 credentials (%v)", err)
	}

	tokens := cfg.Google.Tokens
	if tokens == "" {
		tokens = sheets.TokensFile(credentials)
	}

	token, err := cmd.exchange(context.Background(), config)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	}

	if err := sheets.SaveToken(tokens, token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Saved OAuth2 token to %s\n", tokens)

	return nil
}

// exchange prompts for the authorisation code issued for the consent URL and
// exchanges it for a token.
func (cmd *Authorise) exchange(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Fprintf(cmd.out, "Go to the following link in your browser then type the authorization code:\n%v\n", url)

	var code string
	if _, err := fmt.Fscan(cmd.in, &code); err != nil {
		return nil, fmt.Errorf("unable to read authorization code (%v)", err)
	}

	return config.Exchange(ctx, strings.TrimSpace(code))
}
