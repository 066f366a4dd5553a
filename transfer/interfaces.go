package transfer

import (
	"context"
)

// Source authorises access to the spreadsheet service.
type Source interface {
	Authorize(ctx context.Context) (SheetReader, error)
}

// SheetReader opens spreadsheets on an authorised spreadsheet service.
type SheetReader interface {
	OpenByURL(ctx context.Context, url string) (Spreadsheet, error)
	OpenByKey(ctx context.Context, key string) (Spreadsheet, error)
}

type Spreadsheet interface {
	Title() string
	Worksheet(ctx context.Context, title string) (Worksheet, error)
	WorksheetAt(ctx context.Context, index int) (Worksheet, error)
}

type Worksheet interface {
	Title() string

	// Values returns every cell in the worksheet as displayed, one slice per row.
	// Trailing empty cells may be omitted by the service.
	Values(ctx context.Context) ([][]string, error)
}

// RecordSink is the destination table. Post returns the HTTP status and raw
// response body; a non-nil error means the request itself failed.
type RecordSink interface {
	Authenticate(ctx context.Context) (string, error)
	Post(ctx context.Context, token string, payload []byte) (int, []byte, error)
}
