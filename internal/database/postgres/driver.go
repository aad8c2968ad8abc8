package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/schema"
)

// Driver implements the database.Driver interface for PostgreSQL.
//
// Catalog queries run on the pool. Statements typed by the user run on a single
// acquired connection so that search_path changes stick for the session.
type Driver struct {
	pool    *pgxpool.Pool
	session *pgxpool.Conn
	dbName  string
	active  string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect establishes a connection pool to PostgreSQL and pins the session connection.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	session, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return fmt.Errorf("acquire session: %w", err)
	}

	d.pool = pool
	d.session = session
	d.dbName = cfg.ConnConfig.Database
	d.active = ""
	return nil
}

// Close releases the session connection and closes the pool.
func (d *Driver) Close() error {
	if d.session != nil {
		d.session.Release()
		d.session = nil
	}
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return database.ErrNotConnected
	}
	return d.pool.Ping(ctx)
}

// ListDatabases returns all user schemas in catalog order.
func (d *Driver) ListDatabases(ctx context.Context) ([]string, error) {
	if d.pool == nil {
		return nil, database.ErrNotConnected
	}
	rows, err := d.pool.Query(ctx, queryListSchemas)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// UseDatabase points the session search_path at the schema.
func (d *Driver) UseDatabase(ctx context.Context, name string) error {
	if d.session == nil {
		return database.ErrNotConnected
	}
	stmt := "SET search_path TO " + pgx.Identifier{name}.Sanitize()
	if _, err := d.session.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}
	d.active = name
	return nil
}

// DescribeColumns returns the columns of every table in the schema.
func (d *Driver) DescribeColumns(ctx context.Context, name string) ([]schema.ColumnRef, error) {
	if d.pool == nil {
		return nil, database.ErrNotConnected
	}
	rows, err := d.pool.Query(ctx, queryDescribeColumns, name)
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}
	defer rows.Close()

	var refs []schema.ColumnRef
	for rows.Next() {
		var ref schema.ColumnRef
		if err := rows.Scan(&ref.Table, &ref.Column, &ref.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ExecuteQuery runs a SQL query on the session connection and returns the results.
func (d *Driver) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	if d.session == nil {
		return nil, database.ErrNotConnected
	}
	start := time.Now()

	rows, err := d.session.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var resultRows [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = database.NormalizeValue(v)
		}
		resultRows = append(resultRows, row)
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

// DatabaseName returns the active schema, or the connected database when no
// schema has been selected.
func (d *Driver) DatabaseName() string {
	if d.active != "" {
		return d.active
	}
	return d.dbName
}

// Dialect returns "postgres".
func (d *Driver) Dialect() string {
	return "postgres"
}
