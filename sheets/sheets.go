package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/uhppoted/sheets-caspio/transfer"
)

// Client reads spreadsheets with the Google Sheets v4 API. The Drive v3 API is
// only used to report the latest spreadsheet revision.
type Client struct {
	google *sheetsv4.Service
	gdrive *drive.Service
	log    *zap.Logger
}

type Spreadsheet struct {
	client      *Client
	spreadsheet *sheetsv4.Spreadsheet
}

type Worksheet struct {
	client        *Client
	spreadsheetID string
	sheet         *sheetsv4.Sheet
}

type version struct {
	revision string
	modified time.Time
}

func NewClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	google, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	gdrive, err := drive.NewService(ctx, opts...)
	if err != nil {
		logger.Warn("unable to create Drive client", zap.Error(err))
		gdrive = nil
	}

	return &Client{
		google: google,
		gdrive: gdrive,
		log:    logger,
	}, nil
}

// SpreadsheetID extracts the spreadsheet key from a Google Sheets URL, e.g.
// https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0
func SpreadsheetID(url string) (string, error) {
	match := regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`).FindStringSubmatch(url)
	if len(match) < 2 {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}

func (c *Client) OpenByURL(ctx context.Context, url string) (transfer.Spreadsheet, error) {
	id, err := SpreadsheetID(url)
	if err != nil {
		return nil, err
	}

	return c.OpenByKey(ctx, id)
}

func (c *Client) OpenByKey(ctx context.Context, key string) (transfer.Spreadsheet, error) {
	spreadsheet, err := c.google.Spreadsheets.Get(key).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	c.log.Debug("opened spreadsheet",
		zap.String("id", spreadsheet.SpreadsheetId),
		zap.Int("worksheets", len(spreadsheet.Sheets)))

	if c.gdrive != nil {
		if v, err := c.getVersion(ctx, key); err != nil {
			c.log.Warn("unable to retrieve spreadsheet revision", zap.String("id", key), zap.Error(err))
		} else {
			c.log.Debug("spreadsheet revision", zap.String("revision", v.revision), zap.Time("modified", v.modified))
		}
	}

	return &Spreadsheet{
		client:      c,
		spreadsheet: spreadsheet,
	}, nil
}

func (c *Client) getVersion(ctx context.Context, fileID string) (*version, error) {
	page := ""
	latest := version{
		revision: "",
		modified: time.Time{},
	}

	for {
		call := c.gdrive.Revisions.List(fileID).Context(ctx)
		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, revision := range revisions.Revisions {
			datetime, err := time.Parse(time.RFC3339Nano, revision.ModifiedTime)
			if err != nil {
				return nil, err
			}

			if latest.modified.Before(datetime) {
				latest.revision = revision.Id
				latest.modified = datetime
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.modified.IsZero() {
		return nil, fmt.Errorf("unable to identify latest revision for file ID %s", fileID)
	}

	return &latest, nil
}

func (s *Spreadsheet) Title() string {
	if s.spreadsheet.Properties != nil {
		return s.spreadsheet.Properties.Title
	}

	return ""
}

// Worksheet returns the worksheet with exactly the given title.
func (s *Spreadsheet) Worksheet(ctx context.Context, title string) (transfer.Worksheet, error) {
	for _, sheet := range s.spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return s.worksheet(sheet), nil
		}
	}

	return nil, fmt.Errorf("worksheet '%s' not found", title)
}

// WorksheetAt returns the worksheet at the 0-based tab position.
func (s *Spreadsheet) WorksheetAt(ctx context.Context, index int) (transfer.Worksheet, error) {
	if index < 0 || index >= len(s.spreadsheet.Sheets) {
		return nil, fmt.Errorf("invalid worksheet index %d (spreadsheet has %d worksheets)", index, len(s.spreadsheet.Sheets))
	}

	return s.worksheet(s.spreadsheet.Sheets[index]), nil
}

func (s *Spreadsheet) worksheet(sheet *sheetsv4.Sheet) *Worksheet {
	return &Worksheet{
		client:        s.client,
		spreadsheetID: s.spreadsheet.SpreadsheetId,
		sheet:         sheet,
	}
}

func (w *Worksheet) Title() string {
	if w.sheet.Properties != nil {
		return w.sheet.Properties.Title
	}

	return ""
}

// Values returns the formatted value of every cell in the worksheet.
func (w *Worksheet) Values(ctx context.Context) ([][]string, error) {
	area := quote(w.Title())

	response, err := w.client.google.Spreadsheets.Values.Get(w.spreadsheetID, area).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	rows := [][]string{}
	for _, row := range response.Values {
		record := []string{}
		for _, v := range row {
			if v == nil {
				record = append(record, "")
			} else {
				record = append(record, fmt.Sprintf("%v", v))
			}
		}

		rows = append(rows, record)
	}

	return rows, nil
}

// quote returns the worksheet title as an A1 notation sheet reference.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
