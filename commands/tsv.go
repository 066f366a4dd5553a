package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/uhppoted/sheets-caspio/transfer"
)

// rowsToTSV writes the mapped values of each row as a tab separated record,
// prefixed with the worksheet row number.
func rowsToTSV(f io.Writer, rows []transfer.Row, mapping transfer.FieldMapping) error {
	if len(rows) == 0 {
		return fmt.Errorf("Empty sheet")
	}

	if len(mapping) == 0 {
		return fmt.Errorf("Missing field mapping")
	}

	header := append([]string{"Row"}, mapping.Fields()...)

	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, row := range rows {
		record := append([]string{strconv.Itoa(row.Number)}, mapping.Values(row)...)
		w.Write(record)
	}

	w.Flush()

	return w.Error()
}
