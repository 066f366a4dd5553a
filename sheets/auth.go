package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/uhppoted/sheets-caspio/transfer"
)

const (
	SHEETS = "https://www.googleapis.com/auth/spreadsheets"
	DRIVE  = "https://www.googleapis.com/auth/drive"
)

// Scopes is the access requested for a transfer: read/write spreadsheets and drive.
var Scopes = []string{SHEETS, DRIVE}

// Source authorises a Sheets client from a credentials file. Service account
// keys are used directly, OAuth2 client credentials need a token file created
// by 'authorise'.
type Source struct {
	Credentials string
	Tokens      string
	Scopes      []string
	Options     []option.ClientOption
	Log         *zap.Logger
}

func (s *Source) Authorize(ctx context.Context) (transfer.SheetReader, error) {
	scopes := s.Scopes
	if len(scopes) == 0 {
		scopes = Scopes
	}

	tokens := s.Tokens
	if tokens == "" {
		tokens = TokensFile(s.Credentials)
	}

	client, err := Authorize(ctx, s.Credentials, tokens, scopes...)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	opts = append(opts, s.Options...)

	return NewClient(ctx, s.Log, opts...)
}

// IsServiceAccount returns true if the credentials JSON is a service account key.
func IsServiceAccount(credentials []byte) bool {
	return gjson.GetBytes(credentials, "type").String() == "service_account"
}

func Authorize(ctx context.Context, credentials string, tokens string, scopes ...string) (*http.Client, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	if IsServiceAccount(b) {
		config, err := google.JWTConfigFromJSON(b, scopes...)
		if err != nil {
			return nil, err
		}

		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, err
	}

	token, err := TokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("no OAuth2 token for %s - run 'authorise' first (%w)", credentials, err)
	}

	return config.Client(ctx, token), nil
}

// OAuthConfig returns the OAuth2 configuration for an installed application
// credentials file.
func OAuthConfig(credentials string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	if IsServiceAccount(b) {
		return nil, fmt.Errorf("%s is a service account key", credentials)
	}

	return google.ConfigFromJSON(b, scopes...)
}

// TokensFile returns the default token file for a credentials file, e.g.
// /etc/sheets-caspio/credentials.json -> /etc/sheets-caspio/credentials.tokens
func TokensFile(credentials string) string {
	dir, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(dir, fmt.Sprintf("%s.tokens", name))
}

func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func SaveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0770); err != nil {
		return err
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth2 token (%w)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
