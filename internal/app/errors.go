package app

import (
	"errors"
	"fmt"

	"github.com/joacominatel/askdb/internal/database"
)

var (
	// ErrDatabaseNotListed is returned when selecting a name the server did not list.
	ErrDatabaseNotListed = errors.New("database not found")
	// ErrEmptySchema is returned when the selected database has no tables.
	ErrEmptySchema = errors.New("no tables found in selected schema")
	// ErrNoSchema is returned when asking before a database with tables is selected.
	ErrNoSchema = errors.New("no database selected")
	// ErrNotConnected is returned when the session has no open connection.
	ErrNotConnected = database.ErrNotConnected
)

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a query execution error.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("Error Executing Query: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// ErrSelection reports a database that could not be selected. The session
// and its connection keep their previous selection.
type ErrSelection struct {
	Database string
	Cause    error
}

func (e *ErrSelection) Error() string {
	if errors.Is(e.Cause, ErrDatabaseNotListed) {
		return fmt.Sprintf("Schema %s not found.", e.Database)
	}
	return fmt.Sprintf("Error Selecting Database: %v", e.Cause)
}

func (e *ErrSelection) Unwrap() error {
	return e.Cause
}

// ErrSynthesis wraps a completion failure. It ends the current turn.
type ErrSynthesis struct {
	Cause error
}

func (e *ErrSynthesis) Error() string {
	return fmt.Sprintf("query generation failed: %v", e.Cause)
}

func (e *ErrSynthesis) Unwrap() error {
	return e.Cause
}
