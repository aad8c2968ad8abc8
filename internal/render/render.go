// Package render writes query results and schemas for the CLI.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/schema"
)

// Formats lists the accepted output formats.
var Formats = []string{"table", "json", "csv", "markdown"}

// ValidFormat reports whether name is an accepted output format.
func ValidFormat(name string) bool {
	switch name {
	case "table", "json", "csv", "markdown", "md":
		return true
	}
	return false
}

// Result writes res in the given format. A failed result writes its error
// message in every format except JSON, which carries it in an "error" field.
func Result(w io.Writer, res database.QueryResult, format string) error {
	switch format {
	case "json":
		return resultJSON(w, res)
	case "csv":
		if res.Failed() {
			_, err := fmt.Fprintln(w, res.Error)
			return err
		}
		return resultCSV(w, res)
	case "md", "markdown":
		if res.Failed() {
			_, err := fmt.Fprintln(w, res.Error)
			return err
		}
		return resultTable(w, res, true)
	default:
		if res.Failed() {
			_, err := fmt.Fprintln(w, res.Error)
			return err
		}
		return resultTable(w, res, false)
	}
}

func resultTable(w io.Writer, res database.QueryResult, markdown bool) error {
	if len(res.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, values := range res.StringRows() {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = v
		}
		t.AppendRow(row)
	}

	if markdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", res.RowCount)
	return nil
}

func resultCSV(w io.Writer, res database.QueryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(res.StringRows()); err != nil {
		return err
	}
	return cw.Error()
}

type jsonResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

func resultJSON(w io.Writer, res database.QueryResult) error {
	out := jsonResult{Columns: res.Columns, Rows: res.Rows, Error: res.Error}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Rows == nil {
		out.Rows = [][]any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Schema writes one row per column of desc as a table.
func Schema(w io.Writer, desc *schema.Description) error {
	if desc == nil {
		_, err := fmt.Fprintln(w, "No tables found in selected schema.")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"table", "column", "type"})
	for _, tbl := range desc.Tables {
		for _, col := range tbl.Columns {
			t.AppendRow(table.Row{tbl.Name, col.Name, col.DataType})
		}
		t.AppendSeparator()
	}
	t.Render()
	return nil
}

// List writes one name per line.
func List(w io.Writer, names []string) error {
	for _, n := range names {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}
