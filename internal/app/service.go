package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/llm"
	"github.com/joacominatel/askdb/internal/schema"
)

// Turn is one request and what came of it.
type Turn struct {
	Request string
	SQL     string
	Result  database.QueryResult
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Every line carries the session id.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// Service owns one database session: the connection, the listed databases,
// the selected database and its schema description. It is not safe for
// concurrent use.
type Service struct {
	id     string
	driver database.Driver
	synth  llm.SQLSynthesizer
	log    *slog.Logger

	dsn       string
	databases []string
	listed    bool
	selected  string
	schema    *schema.Description
}

// NewService creates a new session. synth may be nil when only SQL is executed.
func NewService(driver database.Driver, synth llm.SQLSynthesizer, opts ...Option) *Service {
	s := &Service{
		id:     uuid.NewString(),
		driver: driver,
		synth:  synth,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id)
	return s
}

// ID returns the session id.
func (s *Service) ID() string {
	return s.id
}

// Connect establishes a database connection and resets the session state.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	if err := s.driver.Connect(ctx, dsn); err != nil {
		s.log.Error("connect failed", "dialect", s.driver.Dialect(), "error", err)
		return &ErrConnection{Cause: err}
	}
	s.dsn = dsn
	s.reset()
	s.log.Info("connected", "dialect", s.driver.Dialect(), "database", s.driver.DatabaseName())
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	s.reset()
	return s.driver.Close()
}

func (s *Service) reset() {
	s.databases = nil
	s.listed = false
	s.selected = ""
	s.schema = nil
}

// ListDatabases fetches the database names in server order and caches them
// for the session.
func (s *Service) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := s.driver.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	s.databases = names
	s.listed = true
	s.log.Debug("databases listed", "count", len(names))
	return slices.Clone(names), nil
}

// Databases returns the cached database list.
func (s *Service) Databases() []string {
	return slices.Clone(s.databases)
}

// DescribeSchema reads the tables and columns of a database. It returns nil
// when the database has no tables.
func (s *Service) DescribeSchema(ctx context.Context, name string) (*schema.Description, error) {
	refs, err := s.driver.DescribeColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	return schema.Build(name, refs), nil
}

// SelectDatabase loads the schema of name and then makes it the active
// database. A name missing from the listed databases, or one that cannot be
// described or switched to, leaves the session and the connection as they
// were. An empty database is selected but yields ErrEmptySchema and no
// description.
func (s *Service) SelectDatabase(ctx context.Context, name string) (*schema.Description, error) {
	if !s.listed {
		if _, err := s.ListDatabases(ctx); err != nil {
			return nil, err
		}
	}
	if !slices.Contains(s.databases, name) {
		s.log.Warn("database not listed", "database", name)
		return nil, &ErrSelection{Database: name, Cause: ErrDatabaseNotListed}
	}

	// Describe queries are qualified by name, so nothing is switched until
	// the description is in hand.
	desc, err := s.DescribeSchema(ctx, name)
	if err != nil {
		s.log.Warn("describe database failed", "database", name, "error", err)
		return nil, &ErrSelection{Database: name, Cause: err}
	}
	if err := s.driver.UseDatabase(ctx, name); err != nil {
		s.log.Warn("select database failed", "database", name, "error", err)
		return nil, &ErrSelection{Database: name, Cause: err}
	}
	s.selected = name
	s.schema = nil

	if desc == nil {
		s.log.Info("database has no tables", "database", name)
		return nil, ErrEmptySchema
	}
	s.schema = desc
	s.log.Info("database selected", "database", name, "tables", desc.Len())
	return desc, nil
}

// Selected returns the selected database name.
func (s *Service) Selected() string {
	return s.selected
}

// Schema returns the description of the selected database, or nil.
func (s *Service) Schema() *schema.Description {
	return s.schema
}

// Synthesize asks the completion backend for SQL against the current schema.
func (s *Service) Synthesize(ctx context.Context, request string) (string, error) {
	if s.schema == nil {
		return "", ErrNoSchema
	}
	if s.synth == nil {
		return "", &ErrConfig{Cause: errors.New("no completion backend configured")}
	}
	sql, err := s.synth.Synthesize(ctx, request, s.schema)
	if err != nil {
		return "", &ErrSynthesis{Cause: err}
	}
	s.log.Debug("sql generated", "database", s.selected, "sql", sql)
	return sql, nil
}

// Execute runs the statement on the session connection. It never fails:
// errors are reported in the result's Error field with no rows.
func (s *Service) Execute(ctx context.Context, sql string) database.QueryResult {
	start := time.Now()
	res, err := s.driver.ExecuteQuery(ctx, sql)
	if err != nil {
		qe := &ErrQuery{Query: sql, Cause: err}
		s.log.Warn("query failed", "database", s.driver.DatabaseName(), "error", err)
		return database.QueryResult{Error: qe.Error(), Duration: time.Since(start)}
	}
	s.log.Info("query executed", "database", s.driver.DatabaseName(), "rows", res.RowCount, "duration", res.Duration)
	return *res
}

// Ask runs one turn: synthesize SQL for the request, then execute it.
// Synthesis errors end the turn; execution errors are in the Turn's Result.
func (s *Service) Ask(ctx context.Context, request string) (Turn, error) {
	turn := Turn{Request: request}
	sql, err := s.Synthesize(ctx, request)
	if err != nil {
		return turn, err
	}
	turn.SQL = sql
	turn.Result = s.Execute(ctx, sql)
	return turn, nil
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}

// Dialect returns the driver's dialect name.
func (s *Service) Dialect() string {
	return s.driver.Dialect()
}
