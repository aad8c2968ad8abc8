package sqldb

import (
	"strings"

	// Registered database/sql drivers.
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect captures the catalog statements of a database/sql backend.
type Dialect struct {
	// Name is the askdb driver name.
	Name string
	// DriverName is the name registered with database/sql.
	DriverName string
	// ListQuery returns one database name per row.
	ListQuery string
	// DescribeQuery returns (table, column, data type) rows for a database,
	// ordered by table name then ordinal position.
	DescribeQuery func(database string) (string, []any)
	// UseStatement switches the active database. Empty means the backend has
	// no such statement.
	UseStatement func(database string) string
}

// MySQL talks to MySQL and MariaDB through go-sql-driver/mysql.
var MySQL = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	ListQuery:  "SHOW DATABASES",
	DescribeQuery: func(database string) (string, []any) {
		return `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = ?
ORDER BY table_name, ordinal_position`, []any{database}
	},
	UseStatement: func(database string) string {
		return "USE " + quoteWith(database, "`", "`")
	},
}

// SQLServer talks to Microsoft SQL Server through go-mssqldb.
var SQLServer = Dialect{
	Name:       "sqlserver",
	DriverName: "sqlserver",
	ListQuery:  "SELECT name FROM sys.databases",
	DescribeQuery: func(database string) (string, []any) {
		return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
FROM ` + quoteWith(database, "[", "]") + `.INFORMATION_SCHEMA.COLUMNS
ORDER BY TABLE_NAME, ORDINAL_POSITION`, nil
	},
	UseStatement: func(database string) string {
		return "USE " + quoteWith(database, "[", "]")
	},
}

// SQLite talks to SQLite files through modernc.org/sqlite. Attached databases
// are listed as databases; there is no USE so names are schema-qualified.
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	ListQuery:  "SELECT name FROM pragma_database_list ORDER BY seq",
	DescribeQuery: func(database string) (string, []any) {
		return `SELECT m.name, p.name, p.type
FROM ` + quoteWith(database, `"`, `"`) + `.sqlite_master AS m
JOIN pragma_table_info(m.name, ?) AS p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
ORDER BY m.name, p.cid`, []any{database}
	},
	UseStatement: func(string) string { return "" },
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, true
	case "sqlserver", "mssql":
		return SQLServer, true
	case "sqlite", "sqlite3":
		return SQLite, true
	}
	return Dialect{}, false
}

// quoteWith wraps an identifier, doubling any closing quote inside it.
func quoteWith(ident, open, close string) string {
	return open + strings.ReplaceAll(ident, close, close+close) + close
}
