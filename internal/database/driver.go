package database

import (
	"context"
	"errors"

	"github.com/joacominatel/askdb/internal/schema"
)

// ErrNotConnected is returned by drivers used before Connect.
var ErrNotConnected = errors.New("not connected")

// Driver defines the catalog and execution operations a backend must provide.
// A Driver owns a single session connection; it is not safe for concurrent use.
type Driver interface {
	// Connect establishes the session connection.
	Connect(ctx context.Context, dsn string) error

	// Close releases the session connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListDatabases returns database (schema) names in server order.
	ListDatabases(ctx context.Context) ([]string, error)

	// UseDatabase switches the connection's active database.
	UseDatabase(ctx context.Context, name string) error

	// DescribeColumns returns one row per column of every table in the
	// database, ordered by table name then ordinal position.
	DescribeColumns(ctx context.Context, database string) ([]schema.ColumnRef, error)

	// ExecuteQuery runs a SQL statement and returns all rows.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// DatabaseName returns the name of the active database.
	DatabaseName() string

	// Dialect names the backend, e.g. "mysql" or "postgres".
	Dialect() string
}
