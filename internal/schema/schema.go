// Package schema groups catalog metadata rows into an ordered table -> columns
// description and renders it as the text block handed to the completion model.
package schema

import "strings"

// ColumnRef is a single row returned by a catalog metadata query.
type ColumnRef struct {
	Table    string
	Column   string
	DataType string
}

// Column is a column of a described table.
type Column struct {
	Name     string
	DataType string
}

// Table holds a table name and its columns in ordinal order.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in ordinal order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Description is the schema of one database. It is only meaningful for the
// database that produced it.
type Description struct {
	Database string
	Tables   []Table
}

// Build groups metadata rows by table. Tables keep the order in which they were
// first seen and columns keep row order. Build returns nil when refs is empty.
func Build(database string, refs []ColumnRef) *Description {
	if len(refs) == 0 {
		return nil
	}

	d := &Description{Database: database}
	index := make(map[string]int)
	for _, ref := range refs {
		i, ok := index[ref.Table]
		if !ok {
			i = len(d.Tables)
			index[ref.Table] = i
			d.Tables = append(d.Tables, Table{Name: ref.Table})
		}
		d.Tables[i].Columns = append(d.Tables[i].Columns, Column{
			Name:     ref.Column,
			DataType: ref.DataType,
		})
	}
	return d
}

// TableNames returns the table names in description order.
func (d *Description) TableNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}

// Table looks up a table by name.
func (d *Description) Table(name string) (Table, bool) {
	if d == nil {
		return Table{}, false
	}
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Len returns the number of tables.
func (d *Description) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Tables)
}

// String renders the description as
//
//	Table 'users':
//	  - id
//	  - name
//
// with a blank line between tables and surrounding whitespace trimmed.
func (d *Description) String() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range d.Tables {
		b.WriteString("Table '")
		b.WriteString(t.Name)
		b.WriteString("':\n")
		for _, c := range t.Columns {
			b.WriteString("  - ")
			b.WriteString(c.Name)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
