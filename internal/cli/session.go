package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joacominatel/askdb/internal/app"
	"github.com/joacominatel/askdb/internal/config"
	"github.com/joacominatel/askdb/internal/llm"
)

var errNoConnection = errors.New("no connection configured; pass --dsn or add one to the config file")

// connection picks the profile to use: --dsn, then --connection, then the
// default connection of the config.
func (rt *runtime) connection() (config.Connection, error) {
	if rt.opts.dsn != "" {
		return config.ParseDSN(rt.opts.dsn)
	}
	if rt.opts.connection != "" {
		conn, ok := rt.cfg.Connection(rt.opts.connection)
		if !ok {
			return config.Connection{}, fmt.Errorf("connection %q not found", rt.opts.connection)
		}
		return conn, nil
	}
	if conn := config.DefaultConnection(rt.cfg); conn != nil {
		return *conn, nil
	}
	return config.Connection{}, errNoConnection
}

// newService builds an unconnected session for conn. A missing API key only
// disables synthesis.
func (rt *runtime) newService(conn config.Connection) (*app.Service, error) {
	driver, err := app.NewDriver(conn.Driver)
	if err != nil {
		return nil, err
	}

	var synth llm.SQLSynthesizer
	s, err := llm.New(rt.cfg.LLM, rt.log)
	switch {
	case err == nil:
		synth = s
	case errors.Is(err, llm.ErrNoAPIKey):
		rt.log.Debug("query generation disabled", "provider", rt.cfg.LLM.Provider, "error", err)
	default:
		return nil, &app.ErrConfig{Cause: err}
	}

	return app.NewService(driver, synth, app.WithLogger(rt.log)), nil
}

// openSession connects to the resolved connection.
func (rt *runtime) openSession(ctx context.Context) (*app.Service, config.Connection, error) {
	conn, err := rt.connection()
	if err != nil {
		return nil, conn, err
	}
	svc, err := rt.newService(conn)
	if err != nil {
		return nil, conn, err
	}
	if err := svc.Connect(ctx, conn.DSN()); err != nil {
		return nil, conn, err
	}
	return svc, conn, nil
}

// selectDatabase selects name, or the connection's database when name is
// empty. It reports the name used, "" when there was none.
func selectDatabase(ctx context.Context, svc *app.Service, conn config.Connection, name string) (string, error) {
	if name == "" {
		name = conn.Database
	}
	if name == "" {
		return "", nil
	}
	_, err := svc.SelectDatabase(ctx, name)
	return name, err
}
