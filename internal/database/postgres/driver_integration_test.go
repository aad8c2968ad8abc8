package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joacominatel/askdb/internal/schema"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("askdb"),
		tcpostgres.WithUsername("askdb"),
		tcpostgres.WithPassword("askdb"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to cleanup postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://askdb:askdb@%s:%s/askdb?sslmode=disable", host, port.Port())
}

func TestDriver_Postgres(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	d := New()
	require.NoError(t, d.Connect(ctx, dsn))
	defer func() { _ = d.Close() }()

	for _, stmt := range []string{
		"CREATE SCHEMA shop",
		"CREATE TABLE shop.users (id int PRIMARY KEY, name text)",
		"CREATE TABLE shop.orders (id int PRIMARY KEY, user_id int, total numeric)",
		"INSERT INTO shop.users VALUES (1, 'ada'), (2, 'linus')",
		"CREATE SCHEMA empty",
	} {
		_, err := d.ExecuteQuery(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	names, err := d.ListDatabases(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "shop")
	require.Contains(t, names, "empty")
	require.NotContains(t, names, "pg_catalog")

	refs, err := d.DescribeColumns(ctx, "shop")
	require.NoError(t, err)
	desc := schema.Build("shop", refs)
	require.Equal(t, []string{"orders", "users"}, desc.TableNames())
	users, _ := desc.Table("users")
	require.Equal(t, []string{"id", "name"}, users.ColumnNames())

	refs, err = d.DescribeColumns(ctx, "empty")
	require.NoError(t, err)
	require.Nil(t, schema.Build("empty", refs))

	require.NoError(t, d.UseDatabase(ctx, "shop"))
	require.Equal(t, "shop", d.DatabaseName())

	res, err := d.ExecuteQuery(ctx, "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, res.Columns)
	require.Equal(t, [][]any{{"ada"}, {"linus"}}, res.Rows)

	res, err = d.ExecuteQuery(ctx, "SELECT 1")
	require.NoError(t, err)
	require.Len(t, res.Columns, 1)
	require.Equal(t, [][]any{{int32(1)}}, res.Rows)

	_, err = d.ExecuteQuery(ctx, "SELEC 1")
	require.Error(t, err)
}

func TestDriver_NotConnected(t *testing.T) {
	d := New()
	ctx := context.Background()

	_, err := d.ListDatabases(ctx)
	require.Error(t, err)
	require.Error(t, d.UseDatabase(ctx, "x"))
	_, err = d.ExecuteQuery(ctx, "SELECT 1")
	require.Error(t, err)
	require.NoError(t, d.Close())
	require.Equal(t, "postgres", d.Dialect())
}
