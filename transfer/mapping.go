package transfer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

// Row is a data row from the worksheet tagged with its 1-based sheet row number.
type Row struct {
	Number int
	Cells  []string
}

// FieldMapping maps worksheet column indices to destination field names.
// Unmapped columns are not transferred.
type FieldMapping map[int]string

// Columns returns the mapped column indices in ascending order.
func (m FieldMapping) Columns() []int {
	columns := make([]int, 0, len(m))
	for ix := range m {
		columns = append(columns, ix)
	}

	sort.Ints(columns)

	return columns
}

// Fields returns the destination field names in column order.
func (m FieldMapping) Fields() []string {
	fields := []string{}
	for _, ix := range m.Columns() {
		fields = append(fields, m[ix])
	}

	return fields
}

// Values returns the trimmed value for each mapped column of the row, in
// column order. Out of range columns yield "".
func (m FieldMapping) Values(row Row) []string {
	values := []string{}
	for _, ix := range m.Columns() {
		v := ""
		if ix >= 0 && ix < len(row.Cells) {
			v = strings.TrimSpace(row.Cells[ix])
		}

		values = append(values, v)
	}

	return values
}

// Payload builds the JSON record for a row. Columns that are out of range for
// the row or that are blank after trimming are omitted.
func (m FieldMapping) Payload(row Row) ([]byte, error) {
	payload := []byte("{}")
	values := m.Values(row)

	for i, ix := range m.Columns() {
		if values[i] == "" {
			continue
		}

		field := m[ix]
		if b, err := sjson.SetBytes(payload, escape(field), values[i]); err != nil {
			return nil, fmt.Errorf("error setting field '%s' (%w)", field, err)
		} else {
			payload = b
		}
	}

	return payload, nil
}

func pad(cells []string, n int) []string {
	row := make([]string, 0, n)
	row = append(row, cells...)
	for len(row) < n {
		row = append(row, "")
	}

	return row
}

// escape quotes path separators so that a field name is always set as a single
// top level key. Field names with wildcard or modifier characters are rejected
// by config validation.
func escape(field string) string {
	var b strings.Builder
	for _, ch := range field {
		switch ch {
		case '\\', '.', ':':
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
	}

	return b.String()
}
