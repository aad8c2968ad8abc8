package app

import (
	"fmt"

	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/database/postgres"
	"github.com/joacominatel/askdb/internal/database/sqldb"
)

// NewDriver returns an unconnected driver for a config driver name.
func NewDriver(kind string) (database.Driver, error) {
	switch kind {
	case "", "postgres", "postgresql":
		return postgres.New(), nil
	}
	if d, ok := sqldb.Lookup(kind); ok {
		return sqldb.New(d), nil
	}
	return nil, &ErrConfig{Cause: fmt.Errorf("unknown driver %q", kind)}
}
