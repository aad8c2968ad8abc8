// Package sqldb implements database.Driver on database/sql for MySQL, SQL Server
// and SQLite.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/schema"
)

// Driver runs every statement on one pinned *sql.Conn so that USE and other
// session state carry over between calls.
type Driver struct {
	dialect Dialect
	db      *sql.DB
	conn    *sql.Conn
	dbName  string
	active  string
}

// New creates a driver for the dialect.
func New(d Dialect) *Driver {
	return &Driver{dialect: d}
}

// NewWithDB wraps an already opened pool and pins its session connection.
func NewWithDB(ctx context.Context, d Dialect, db *sql.DB) (*Driver, error) {
	drv := New(d)
	if err := drv.attach(ctx, db); err != nil {
		return nil, err
	}
	return drv, nil
}

// Connect opens the pool and pins the session connection.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open(d.dialect.DriverName, dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if err := d.attach(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

func (d *Driver) attach(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("ping: %w", err)
	}
	d.db = db
	d.conn = conn
	d.active = ""
	d.dbName = d.currentDatabase(ctx)
	return nil
}

// currentDatabase asks the server for the database the DSN connected to.
func (d *Driver) currentDatabase(ctx context.Context) string {
	var query string
	switch d.dialect.Name {
	case "mysql":
		query = "SELECT COALESCE(DATABASE(), '')"
	case "sqlserver":
		query = "SELECT DB_NAME()"
	default:
		return "main"
	}
	var name string
	if err := d.conn.QueryRowContext(ctx, query).Scan(&name); err != nil {
		return ""
	}
	return name
}

// Close releases the session connection and the pool.
func (d *Driver) Close() error {
	var firstErr error
	if d.conn != nil {
		firstErr = d.conn.Close()
		d.conn = nil
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.db = nil
	}
	return firstErr
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.conn == nil {
		return database.ErrNotConnected
	}
	return d.conn.PingContext(ctx)
}

// ListDatabases returns the database names in server order.
func (d *Driver) ListDatabases(ctx context.Context) ([]string, error) {
	if d.conn == nil {
		return nil, database.ErrNotConnected
	}
	rows, err := d.conn.QueryContext(ctx, d.dialect.ListQuery)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan database: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UseDatabase switches the active database of the session connection.
func (d *Driver) UseDatabase(ctx context.Context, name string) error {
	if d.conn == nil {
		return database.ErrNotConnected
	}
	if stmt := d.dialect.UseStatement(name); stmt != "" {
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("use %s: %w", name, err)
		}
	}
	d.active = name
	return nil
}

// DescribeColumns returns every column of every table in the database.
func (d *Driver) DescribeColumns(ctx context.Context, name string) ([]schema.ColumnRef, error) {
	if d.conn == nil {
		return nil, database.ErrNotConnected
	}
	query, args := d.dialect.DescribeQuery(name)
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []schema.ColumnRef
	for rows.Next() {
		var ref schema.ColumnRef
		var dataType sql.NullString
		if err := rows.Scan(&ref.Table, &ref.Column, &dataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		ref.DataType = dataType.String
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ExecuteQuery runs a statement on the session connection and fetches all rows.
func (d *Driver) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	if d.conn == nil {
		return nil, database.ErrNotConnected
	}
	start := time.Now()

	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		for i, v := range values {
			values[i] = database.NormalizeValue(v)
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &database.QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
		Duration: time.Since(start),
	}, nil
}

// DatabaseName returns the active database, or the one the DSN connected to.
func (d *Driver) DatabaseName() string {
	if d.active != "" {
		return d.active
	}
	return d.dbName
}

// Dialect returns the dialect name.
func (d *Driver) Dialect() string {
	return d.dialect.Name
}
