package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/config"
)

// Config holds the settings for a transfer. Values are resolved from the
// embedded defaults, then any YAML configuration files and finally the
// command line.
type Config struct {
	Caspio   Caspio   `yaml:"caspio"`
	Google   Google   `yaml:"google"`
	Transfer Transfer `yaml:"transfer"`
}

type Caspio struct {
	Account      string `yaml:"account"`
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	Table        string `yaml:"table"`
}

type Google struct {
	Credentials string `yaml:"credentials"`
	Tokens      string `yaml:"tokens"`
	Sheet       string `yaml:"sheet"`
	Worksheet   string `yaml:"worksheet"`
}

type Transfer struct {
	Delay   time.Duration  `yaml:"delay"`
	Mapping map[int]string `yaml:"mapping"`
}

// Environment variables are expanded with the ${NAME:default} syntax.
const defaults = `
caspio:
  account: "${CASPIO_ACCOUNT_ID:your-account-id}"
  client-id: "${CASPIO_CLIENT_ID:your-client-id}"
  client-secret: "${CASPIO_CLIENT_SECRET:your-client-secret}"
  table: "${CASPIO_TABLE_NAME:NganSachPT}"

google:
  credentials: "${GOOGLE_CREDENTIALS:google-credentials.json}"
  sheet: "${SHEET_URL:https://docs.google.com/spreadsheets/...}"
  worksheet: "${WORKSHEET_NAME:CPPhanTich}"

transfer:
  delay: 100ms
`

// DefaultMapping is the column mapping for the 'CPPhanTich' advertising
// spend worksheet.
func DefaultMapping() map[int]string {
	return map[int]string{
		0:  "Page_ID",
		1:  "Amount_Spent",
		2:  "Day",
		3:  "Reach",
		4:  "Impressions",
		5:  "Frequency",
		6:  "CPM_Cost_per_1000_Impressions",
		7:  "Link_Clicks",
		8:  "CPC_All",
		9:  "CTR_All",
		10: "ChiNhanh",
	}
}

// Load resolves the configuration from the defaults and the (optional) YAML
// files, expanding environment variables in all of them. A mapping in a file
// replaces the default mapping rather than being merged with it.
func Load(files ...string) (*Config, error) {
	return load(os.LookupEnv, files...)
}

func load(lookup func(string) (string, bool), files ...string) (*Config, error) {
	options := []config.YAMLOption{
		config.Source(strings.NewReader(defaults)),
	}

	for _, f := range files {
		if strings.TrimSpace(f) != "" {
			options = append(options, config.File(f))
		}
	}

	options = append(options, config.Expand(lookup))

	yaml, err := config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to read yaml config %w", err)
	}

	cfg := Config{}
	if err := yaml.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("failed to populate config %w", err)
	}

	if len(cfg.Transfer.Mapping) == 0 {
		cfg.Transfer.Mapping = DefaultMapping()
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Caspio.Account) == "" {
		return fmt.Errorf("missing Caspio account ID")
	}

	if strings.TrimSpace(c.Caspio.Table) == "" {
		return fmt.Errorf("missing Caspio table name")
	}

	if strings.TrimSpace(c.Google.Credentials) == "" {
		return fmt.Errorf("missing Google credentials file")
	}

	if strings.TrimSpace(c.Google.Sheet) == "" {
		return fmt.Errorf("missing spreadsheet URL or key")
	}

	if c.Transfer.Delay < 0 {
		return fmt.Errorf("invalid transfer delay %v", c.Transfer.Delay)
	}

	if len(c.Transfer.Mapping) == 0 {
		return fmt.Errorf("missing field mapping")
	}

	for ix, field := range c.Transfer.Mapping {
		if ix < 0 {
			return fmt.Errorf("invalid column index %d for field '%s'", ix, field)
		}

		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("missing field name for column %d", ix)
		}

		if strings.ContainsAny(field, `|#@*?`) {
			return fmt.Errorf("invalid field name '%s' for column %d", field, ix)
		}
	}

	return nil
}
