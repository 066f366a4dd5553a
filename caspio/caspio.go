// Package caspio posts records to a Caspio table through the Caspio REST v2 API.
package caspio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// HTTPRequestTimeout is the default timeout for requests to the Caspio API.
const HTTPRequestTimeout = 60 * time.Second

// Client authenticates with OAuth2 client credentials and posts records to a
// single table.
type Client struct {
	account      string
	clientID     string
	clientSecret string
	table        string

	baseURL string
	client  *http.Client
	record  string
	log     *zap.Logger
}

// Error is a Caspio response with an unexpected HTTP status.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("status %d\nResponse: %s", e.StatusCode, e.Body)
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithBaseURL replaces the https://{account}.caspio.com base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithRecording writes every request and response to files in dir.
func WithRecording(dir string) Option {
	return func(c *Client) {
		c.record = dir
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

func NewClient(account, clientID, clientSecret, table string, opts ...Option) *Client {
	c := Client{
		account:      NormaliseAccount(account),
		clientID:     clientID,
		clientSecret: clientSecret,
		table:        table,
		client:       &http.Client{Timeout: HTTPRequestTimeout},
		log:          zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.baseURL == "" {
		c.baseURL = fmt.Sprintf("https://%s.caspio.com", c.account)
	}

	return &c
}

// NormaliseAccount strips the protocol and the .caspio.com suffix from an
// account identifier, e.g. https://c1abc123.caspio.com -> c1abc123.
func NormaliseAccount(account string) string {
	account = strings.ReplaceAll(account, "https://", "")
	account = strings.ReplaceAll(account, "http://", "")
	account = strings.TrimSuffix(account, ".caspio.com")

	return account
}

func (c *Client) TokenURL() string {
	return c.baseURL + "/oauth/token"
}

func (c *Client) RecordsURL() string {
	return fmt.Sprintf("%s/rest/v2/tables/%s/records", c.baseURL, url.PathEscape(c.table))
}

// Authenticate requests an access token with the client credentials grant.
// Only an HTTP 200 response with an access_token is accepted.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	c.log.Debug("caspio token request", zap.String("url", c.TokenURL()))

	status, body, err := c.fetch(ctx, c.builder(c.TokenURL()).BodyForm(form))
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", &Error{StatusCode: status, Body: string(body)}
	}

	token := gjson.GetBytes(body, "access_token")
	if !token.Exists() || token.String() == "" {
		return "", fmt.Errorf("response missing access_token (%s)", body)
	}

	return token.String(), nil
}

// Post sends a single JSON record to the table and returns the HTTP status and
// response body, whatever the status. The error is only set if no response
// was received.
func (c *Client) Post(ctx context.Context, token string, payload []byte) (int, []byte, error) {
	c.log.Debug("caspio post",
		zap.String("url", c.RecordsURL()),
		zap.String("table", c.table))

	rb := c.builder(c.RecordsURL()).
		Bearer(token).
		BodyBytes(payload).
		ContentType("application/json")

	return c.fetch(ctx, rb)
}

func (c *Client) builder(u string) *requests.Builder {
	rb := requests.
		URL(u).
		Client(c.client)

	if c.record != "" {
		rb = rb.Transport(requests.Record(nil, c.record))
	}

	return rb
}

func (c *Client) fetch(ctx context.Context, rb *requests.Builder) (int, []byte, error) {
	var status int
	var body []byte

	err := rb.
		Post().
		AddValidator(func(*http.Response) error { return nil }).
		Handle(func(response *http.Response) error {
			status = response.StatusCode
			b, err := io.ReadAll(response.Body)
			body = b
			return err
		}).
		Fetch(ctx)

	return status, body, err
}
