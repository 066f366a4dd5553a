package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

type source struct {
	reader SheetReader
	err    error
}

func (s *source) Authorize(ctx context.Context) (SheetReader, error) {
	return s.reader, s.err
}

type reader struct {
	spreadsheet *spreadsheet
	opened      string
}

func (r *reader) OpenByURL(ctx context.Context, url string) (Spreadsheet, error) {
	r.opened = "url:" + url
	return r.spreadsheet, nil
}

func (r *reader) OpenByKey(ctx context.Context, key string) (Spreadsheet, error) {
	r.opened = "key:" + key
	return r.spreadsheet, nil
}

type spreadsheet struct {
	worksheets []*worksheet
}

func (s *spreadsheet) Title() string {
	return "Budget"
}

func (s *spreadsheet) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	for _, ws := range s.worksheets {
		if ws.title == title {
			return ws, nil
		}
	}

	return nil, fmt.Errorf("worksheet '%s' not found", title)
}

func (s *spreadsheet) WorksheetAt(ctx context.Context, index int) (Worksheet, error) {
	if index < 0 || index >= len(s.worksheets) {
		return nil, fmt.Errorf("invalid worksheet index %d", index)
	}

	return s.worksheets[index], nil
}

type worksheet struct {
	title  string
	values [][]string
	err    error
}

func (w *worksheet) Title() string {
	return w.title
}

func (w *worksheet) Values(ctx context.Context) ([][]string, error) {
	return w.values, w.err
}

type post struct {
	token   string
	payload map[string]string
}

type sink struct {
	token    string
	err      error
	statuses map[int]int
	posts    []post
}

func (s *sink) Authenticate(ctx context.Context) (string, error) {
	return s.token, s.err
}

func (s *sink) Post(ctx context.Context, token string, payload []byte) (int, []byte, error) {
	record := map[string]string{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return 0, nil, err
	}

	s.posts = append(s.posts, post{token: token, payload: record})

	if status, ok := s.statuses[len(s.posts)]; ok {
		if status == 0 {
			return 0, nil, errors.New("connection reset")
		}

		return status, []byte(`{"Message":"rejected"}`), nil
	}

	return 201, nil, nil
}

func newTestTransfer(values [][]string, snk *sink) (*Transfer, *[]time.Duration) {
	src := source{
		reader: &reader{
			spreadsheet: &spreadsheet{
				worksheets: []*worksheet{
					{title: "Summary", values: values},
					{title: "CPPhanTich", values: values},
				},
			},
		},
	}

	delays := []time.Duration{}
	t := NewTransfer(&src, snk, nil)
	t.Out = io.Discard
	t.sleep = func(d time.Duration) { delays = append(delays, d) }

	return t, &delays
}

func TestRun(t *testing.T) {
	values := [][]string{
		{"A", "B", "C"},
		{" v1 ", "", "extra"},
		{"v2", "w2"},
	}

	expected := []post{
		{token: "abc123", payload: map[string]string{"X": "v1"}},
		{token: "abc123", payload: map[string]string{"X": "v2", "Y": "w2"}},
	}

	snk := sink{token: "abc123"}
	tx, delays := newTestTransfer(values, &snk)

	summary, err := tx.Run(context.Background(), "1BxiMVs0XRA5", "CPPhanTich", FieldMapping{0: "X", 1: "Y"})
	if err != nil {
		t.Fatalf("Unexpected error running transfer (%v)", err)
	}

	if summary.Attempted != 2 || !reflect.DeepEqual(summary.Successful, []int{2, 3}) || summary.Failed() != 0 {
		t.Errorf("Incorrect summary\n   expected: %v\n   got:      %+v", "2 attempted, rows [2 3] successful", summary)
	}

	if !reflect.DeepEqual(snk.posts, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v", expected, snk.posts)
	}

	if !reflect.DeepEqual(*delays, []time.Duration{DefaultDelay, DefaultDelay}) {
		t.Errorf("Incorrect delays\n   expected: %v\n   got:      %v", []time.Duration{DefaultDelay, DefaultDelay}, *delays)
	}
}

func TestRunWithRejectedRows(t *testing.T) {
	values := [][]string{{"A"}}
	for i := 2; i <= 7; i++ {
		values = append(values, []string{fmt.Sprintf("r%v", i)})
	}

	snk := sink{
		token:    "abc123",
		statuses: map[int]int{5: 500, 3: 0},
	}

	tx, delays := newTestTransfer(values, &snk)

	summary, err := tx.Run(context.Background(), "1BxiMVs0XRA5", "CPPhanTich", FieldMapping{0: "X"})
	if err != nil {
		t.Fatalf("Unexpected error running transfer (%v)", err)
	}

	if expected := []int{2, 3, 5, 7}; !reflect.DeepEqual(summary.Successful, expected) {
		t.Errorf("Incorrect successful rows\n   expected: %v\n   got:      %v", expected, summary.Successful)
	}

	if summary.Attempted != 6 || summary.Failed() != 2 {
		t.Errorf("Incorrect summary - expected 6 attempted and 2 failed, got %+v", summary)
	}

	order := []string{}
	for _, p := range snk.posts {
		order = append(order, p.payload["X"])
	}

	if expected := []string{"r2", "r3", "r4", "r5", "r6", "r7"}; !reflect.DeepEqual(order, expected) {
		t.Errorf("Incorrect post order\n   expected: %v\n   got:      %v", expected, order)
	}

	if len(*delays) != 6 {
		t.Errorf("Expected a delay after every row, got %v", *delays)
	}
}

func TestRunWithSourceAuthenticationFailure(t *testing.T) {
	snk := sink{token: "abc123"}
	tx := NewTransfer(&source{err: errors.New("invalid key")}, &snk, nil)
	tx.Out = io.Discard

	if _, err := tx.Run(context.Background(), "1BxiMVs0XRA5", "", FieldMapping{0: "X"}); !errors.Is(err, ErrSourceAuth) {
		t.Errorf("Expected %v, got %v", ErrSourceAuth, err)
	}

	if len(snk.posts) != 0 {
		t.Errorf("Expected no records to be posted, got %v", snk.posts)
	}
}

func TestRunWithDestinationAuthenticationFailure(t *testing.T) {
	values := [][]string{{"A"}, {"v1"}, {"v2"}}
	snk := sink{err: errors.New("status 401")}
	tx, _ := newTestTransfer(values, &snk)

	if _, err := tx.Run(context.Background(), "1BxiMVs0XRA5", "", FieldMapping{0: "X"}); !errors.Is(err, ErrDestinationAuth) {
		t.Errorf("Expected %v, got %v", ErrDestinationAuth, err)
	}

	if len(snk.posts) != 0 {
		t.Errorf("Expected no records to be posted, got %v", snk.posts)
	}
}

func TestRunWithEmptySheet(t *testing.T) {
	snk := sink{token: "abc123"}
	tx, _ := newTestTransfer([][]string{}, &snk)

	summary, err := tx.Run(context.Background(), "1BxiMVs0XRA5", "CPPhanTich", FieldMapping{0: "X"})
	if err != nil {
		t.Fatalf("Unexpected error running transfer with empty sheet (%v)", err)
	}

	if summary.Attempted != 0 || len(summary.Successful) != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}

	if len(snk.posts) != 0 {
		t.Errorf("Expected no records to be posted, got %v", snk.posts)
	}
}

func TestReadRows(t *testing.T) {
	values := [][]string{
		{"Page", "Amount", "Day"},
		{"p1", "10"},
		{},
		{"p3", "30", "2024-01-03", "overflow"},
	}

	expected := []Row{
		{Number: 2, Cells: []string{"p1", "10", ""}},
		{Number: 3, Cells: []string{"", "", ""}},
		{Number: 4, Cells: []string{"p3", "30", "2024-01-03", "overflow"}},
	}

	tx, _ := newTestTransfer(values, &sink{})
	if !tx.AuthenticateSource(context.Background()) {
		t.Fatalf("Unexpected source authentication failure")
	}

	rows, headers := tx.ReadRows(context.Background(), "1BxiMVs0XRA5", "CPPhanTich")

	if !reflect.DeepEqual(headers, values[0]) {
		t.Errorf("Incorrect headers\n   expected: %v\n   got:      %v", values[0], headers)
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}
}

func TestReadRowsOpensByURLOrKey(t *testing.T) {
	tests := map[string]string{
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5/edit": "url:https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5/edit",
		"1BxiMVs0XRA5": "key:1BxiMVs0XRA5",
	}

	for sheet, expected := range tests {
		tx, _ := newTestTransfer([][]string{{"A"}}, &sink{})
		tx.AuthenticateSource(context.Background())
		tx.ReadRows(context.Background(), sheet, "")

		r := tx.reader.(*reader)
		if r.opened != expected {
			t.Errorf("Incorrect open for %v\n   expected: %v\n   got:      %v", sheet, expected, r.opened)
		}
	}
}

func TestReadRowsWithUnknownWorksheet(t *testing.T) {
	var out strings.Builder

	src := source{
		reader: &reader{
			spreadsheet: &spreadsheet{
				worksheets: []*worksheet{
					{title: "First", values: [][]string{{"A"}, {"first"}}},
					{title: "Second", values: [][]string{{"A"}, {"second"}}},
				},
			},
		},
	}

	tx := NewTransfer(&src, &sink{}, nil)
	tx.Out = &out
	tx.AuthenticateSource(context.Background())

	rows, _ := tx.ReadRows(context.Background(), "1BxiMVs0XRA5", "Missing")

	if expected := []Row{{Number: 2, Cells: []string{"first"}}}; !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}

	if !strings.Contains(out.String(), "Worksheet 'Missing' not found, using first worksheet: First") {
		t.Errorf("Expected fallback to be reported, got:\n%s", out.String())
	}
}

func TestReadRowsWithReadError(t *testing.T) {
	src := source{
		reader: &reader{
			spreadsheet: &spreadsheet{
				worksheets: []*worksheet{
					{title: "CPPhanTich", err: errors.New("quota exceeded")},
				},
			},
		},
	}

	tx := NewTransfer(&src, &sink{}, nil)
	tx.Out = io.Discard
	tx.AuthenticateSource(context.Background())

	rows, headers := tx.ReadRows(context.Background(), "1BxiMVs0XRA5", "CPPhanTich")
	if len(rows) != 0 || len(headers) != 0 {
		t.Errorf("Expected empty result for read error, got %v %v", rows, headers)
	}
}

func TestSendRowsWithoutToken(t *testing.T) {
	snk := sink{}
	tx, delays := newTestTransfer(nil, &snk)

	successes := tx.SendRows(context.Background(), []Row{{Number: 2, Cells: []string{"v1"}}}, FieldMapping{0: "X"}, []string{"A"})

	if len(successes) != 0 {
		t.Errorf("Expected no successful rows, got %v", successes)
	}

	if len(snk.posts) != 0 || len(*delays) != 0 {
		t.Errorf("Expected no records to be posted, got %v", snk.posts)
	}
}
