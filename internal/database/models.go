package database

import (
	"fmt"
	"time"
)

// QueryResult holds the outcome of a SQL execution. Either Columns and Rows are
// set, or Error carries the failure message and Rows is empty.
type QueryResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int
	Duration time.Duration
	Error    string
}

// Failed reports whether the execution produced an error message instead of rows.
func (r QueryResult) Failed() bool {
	return r.Error != ""
}

// StringRows renders every cell with FormatValue.
func (r QueryResult) StringRows() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		out[i] = cells
	}
	return out
}

// FormatValue renders a driver value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// NormalizeValue converts raw driver values into display-friendly Go values.
func NormalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
