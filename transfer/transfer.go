package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is the pause after each record is posted.
const DefaultDelay = 100 * time.Millisecond

var (
	ErrSourceAuth      = errors.New("spreadsheet authentication failed")
	ErrDestinationAuth = errors.New("destination authentication failed")
)

// Transfer copies worksheet rows to a destination table, one record per row.
// A Transfer is single use and not safe for concurrent use.
type Transfer struct {
	Source Source
	Sink   RecordSink
	Delay  time.Duration
	Out    io.Writer
	Log    *zap.Logger

	reader SheetReader
	token  string
	sleep  func(time.Duration)
}

// Summary is the outcome of a completed run.
type Summary struct {
	Attempted  int
	Successful []int
}

func (s Summary) Failed() int {
	return s.Attempted - len(s.Successful)
}

func NewTransfer(source Source, sink RecordSink, logger *zap.Logger) *Transfer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transfer{
		Source: source,
		Sink:   sink,
		Delay:  DefaultDelay,
		Out:    os.Stdout,
		Log:    logger,
		sleep:  time.Sleep,
	}
}

// Run authenticates to both services, reads the worksheet and posts every row.
// Only authentication failures are returned as errors: unreadable sheets are
// treated as empty and rejected rows are reported and skipped.
func (t *Transfer) Run(ctx context.Context, sheet string, worksheet string, mapping FieldMapping) (Summary, error) {
	if !t.AuthenticateSource(ctx) {
		return Summary{}, ErrSourceAuth
	}

	if !t.AuthenticateDestination(ctx) {
		return Summary{}, ErrDestinationAuth
	}

	rows, headers := t.ReadRows(ctx, sheet, worksheet)
	if len(rows) == 0 {
		t.printf("No rows to transfer\n")
		return Summary{}, nil
	}

	transferred := t.SendRows(ctx, rows, mapping, headers)
	summary := Summary{
		Attempted:  len(rows),
		Successful: transferred,
	}

	t.printf("\n=== Transfer Summary ===\n")
	t.printf("Total attempted: %d\n", summary.Attempted)
	t.printf("Successful: %d\n", len(summary.Successful))
	t.printf("Failed: %d\n", summary.Failed())

	return summary, nil
}

func (t *Transfer) AuthenticateSource(ctx context.Context) bool {
	reader, err := t.Source.Authorize(ctx)
	if err != nil {
		t.printf("✗ Google Sheets authentication failed: %v\n", err)
		t.logger().Error("spreadsheet authentication failed", zap.Error(err))
		return false
	}

	t.reader = reader
	t.printf("✓ Google Sheets authentication successful\n")

	return true
}

func (t *Transfer) AuthenticateDestination(ctx context.Context) bool {
	token, err := t.Sink.Authenticate(ctx)
	if err != nil {
		t.printf("✗ Caspio authentication failed: %v\n", err)
		t.logger().Error("destination authentication failed", zap.Error(err))
		return false
	}

	t.token = token
	t.printf("✓ Caspio authentication successful\n")

	return true
}

// ReadRows returns the data rows and the header row of the worksheet. Row
// numbers start at 2 and every row is padded to the header width. Any error
// is reported and yields no rows.
func (t *Transfer) ReadRows(ctx context.Context, sheet string, worksheet string) ([]Row, []string) {
	rows, headers, err := t.read(ctx, sheet, worksheet)
	if err != nil {
		t.printf("✗ Error reading Google Sheet: %v\n", err)
		t.logger().Warn("error reading spreadsheet", zap.String("sheet", sheet), zap.Error(err))
		return []Row{}, []string{}
	}

	return rows, headers
}

func (t *Transfer) read(ctx context.Context, sheet string, worksheet string) ([]Row, []string, error) {
	if t.reader == nil {
		return nil, nil, fmt.Errorf("spreadsheet service not authorised")
	}

	t.printf("Opening Google Sheet: %s\n", sheet)

	var spreadsheet Spreadsheet
	var err error

	if strings.Contains(sheet, "docs.google.com") {
		spreadsheet, err = t.reader.OpenByURL(ctx, sheet)
	} else {
		spreadsheet, err = t.reader.OpenByKey(ctx, sheet)
	}

	if err != nil {
		return nil, nil, err
	}

	t.printf("✓ Sheet opened successfully: %s\n", spreadsheet.Title())

	ws, err := t.selectWorksheet(ctx, spreadsheet, worksheet)
	if err != nil {
		return nil, nil, err
	}

	values, err := ws.Values(ctx)
	if err != nil {
		return nil, nil, err
	}

	if len(values) == 0 {
		t.printf("✗ No data found in sheet\n")
		return []Row{}, []string{}, nil
	}

	headers := values[0]
	rows := []Row{}
	for i, cells := range values[1:] {
		rows = append(rows, Row{
			Number: i + 2,
			Cells:  pad(cells, len(headers)),
		})
	}

	t.logger().Debug("read worksheet",
		zap.String("worksheet", ws.Title()),
		zap.Strings("headers", headers),
		zap.Int("rows", len(rows)))

	return rows, headers, nil
}

// selectWorksheet falls back to the first worksheet if the named worksheet
// cannot be retrieved for any reason.
func (t *Transfer) selectWorksheet(ctx context.Context, spreadsheet Spreadsheet, worksheet string) (Worksheet, error) {
	if worksheet == "" {
		ws, err := spreadsheet.WorksheetAt(ctx, 0)
		if err != nil {
			return nil, err
		}

		t.printf("✓ Using first worksheet: %s\n", ws.Title())
		return ws, nil
	}

	if ws, err := spreadsheet.Worksheet(ctx, worksheet); err == nil {
		t.printf("✓ Found worksheet: %s\n", ws.Title())
		return ws, nil
	} else {
		t.logger().Debug("worksheet lookup failed", zap.String("worksheet", worksheet), zap.Error(err))
	}

	ws, err := spreadsheet.WorksheetAt(ctx, 0)
	if err != nil {
		return nil, err
	}

	t.printf("✗ Worksheet '%s' not found, using first worksheet: %s\n", worksheet, ws.Title())

	return ws, nil
}

// SendRows posts one record per row in row order and returns the row numbers
// the destination accepted. A failed row is reported and skipped.
func (t *Transfer) SendRows(ctx context.Context, rows []Row, mapping FieldMapping, headers []string) []int {
	if t.token == "" {
		t.printf("✗ No Caspio token available\n")
		return []int{}
	}

	t.logger().Debug("transferring rows", zap.Int("rows", len(rows)), zap.Int("columns", len(headers)), zap.Strings("fields", mapping.Fields()))
	t.printf("\nStarting transfer of %d records...\n", len(rows))

	successes := []int{}
	for _, row := range rows {
		if err := t.send(ctx, row, mapping); err != nil {
			t.printf("   ✗ Row %d - %v\n", row.Number, err)
		} else {
			successes = append(successes, row.Number)
			t.printf("   ✓ Row %d\n", row.Number)
		}

		if t.Delay > 0 {
			if t.sleep != nil {
				t.sleep(t.Delay)
			} else {
				time.Sleep(t.Delay)
			}
		}
	}

	return successes
}

func (t *Transfer) send(ctx context.Context, row Row, mapping FieldMapping) error {
	payload, err := mapping.Payload(row)
	if err != nil {
		return err
	}

	t.logger().Debug("posting record", zap.Int("row", row.Number), zap.ByteString("payload", payload))

	status, body, err := t.Sink.Post(ctx, t.token, payload)
	if err != nil {
		return err
	}

	if status != 200 && status != 201 {
		return fmt.Errorf("status %d\n     %s", status, body)
	}

	return nil
}

func (t *Transfer) logger() *zap.Logger {
	if t.Log == nil {
		return zap.NewNop()
	}

	return t.Log
}

func (t *Transfer) printf(format string, args ...any) {
	if t.Out != nil {
		fmt.Fprintf(t.Out, format, args...)
	}
}
