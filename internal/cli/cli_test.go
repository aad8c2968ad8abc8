package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	_ "modernc.org/sqlite"

	"github.com/joacominatel/askdb/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"HOST_NAME", "PORT_NAME", "USER_NAME", "PASSWORD", "DATABASE_NAME",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
	keyring.MockInit()
}

func newShopDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace')",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

// fakeOpenAI answers every chat completion with reply.
func fakeOpenAI(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			content, _ := json.Marshal(reply)
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"created": 1700000000,
				"model": "gpt-4o",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}]
			}`, content)
		case "/audio/transcriptions":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"text": "list users"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dbPath, baseURL string) string {
	t.Helper()
	body := fmt.Sprintf(`
connections:
  - name: shop
    driver: sqlite
    path: %s
llm:
  provider: openai
  api_key: sk-test
  base_url: %s/
voice:
  base_url: %s/
log:
  level: error
`, dbPath, baseURL, baseURL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func setup(t *testing.T, reply string) string {
	t.Helper()
	isolate(t)
	srv := fakeOpenAI(t, reply)
	return writeConfig(t, newShopDB(t), srv.URL)
}

func TestDatabases(t *testing.T) {
	cfg := setup(t, "")

	out, _, err := run(t, "", "--config", cfg, "databases")
	require.NoError(t, err)
	assert.Equal(t, "main\n", out)
}

func TestSchema(t *testing.T) {
	cfg := setup(t, "")

	out, _, err := run(t, "", "--config", cfg, "schema", "--text", "main")
	require.NoError(t, err)
	assert.Equal(t, "Table 'users':\n  - id\n  - name\n", out)

	_, _, err = run(t, "", "--config", cfg, "schema", "mian")
	require.Error(t, err)
	assert.Equal(t, "Schema mian not found.", err.Error())
}

func TestExec(t *testing.T) {
	cfg := setup(t, "")

	out, _, err := run(t, "", "--config", cfg, "-o", "csv", "exec", "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, "name\nada\ngrace\n", out)

	out, _, err = run(t, "", "--config", cfg, "exec", "SELEC 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Error Executing Query: "), out)
}

func TestExec_DSN(t *testing.T) {
	isolate(t)
	db := newShopDB(t)

	out, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--dsn", db, "-o", "json", "exec", "SELECT 1 AS one")
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns": ["one"], "rows": [[1]]}`, out)
}

func TestAsk(t *testing.T) {
	cfg := setup(t, "SELECT count(*) AS n FROM users")

	out, errOut, err := run(t, "", "--config", cfg, "-o", "csv", "ask", "--db", "main", "how", "many", "users?")
	require.NoError(t, err)
	assert.Equal(t, "n\n2\n", out)
	assert.Contains(t, errOut, "SELECT count(*) AS n FROM users")
}

func TestAsk_DryRun(t *testing.T) {
	cfg := setup(t, "SELECT name FROM users")

	out, _, err := run(t, "", "--config", cfg, "ask", "--dry-run", "list", "users")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM users\n", out)
}

func TestAsk_UnknownDatabase(t *testing.T) {
	cfg := setup(t, "SELECT 1")

	_, _, err := run(t, "", "--config", cfg, "ask", "--db", "mian", "anything")
	require.Error(t, err)
	assert.Equal(t, "Schema mian not found.", err.Error())
}

func TestTranscribe(t *testing.T) {
	cfg := setup(t, "")
	audio := filepath.Join(t.TempDir(), "req.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o600))

	out, _, err := run(t, "", "--config", cfg, "transcribe", audio)
	require.NoError(t, err)
	assert.Equal(t, "list users\n", out)
}

func TestSecret(t *testing.T) {
	cfg := setup(t, "")

	out, _, err := run(t, "pw123\n", "--config", cfg, "secret", "set", "shop")
	require.NoError(t, err)
	assert.Equal(t, "Stored conn:shop\n", out)

	v, ok := config.GetSecret("conn:shop")
	require.True(t, ok)
	assert.Equal(t, "pw123", v)

	_, _, err = run(t, "", "--config", cfg, "secret", "set", "openai", "--value", "sk-new")
	require.NoError(t, err)
	v, _ = config.GetSecret("llm:openai")
	assert.Equal(t, "sk-new", v)

	out, _, err = run(t, "", "--config", cfg, "secret", "delete", "shop")
	require.NoError(t, err)
	assert.Equal(t, "Deleted conn:shop\n", out)
	_, ok = config.GetSecret("conn:shop")
	assert.False(t, ok)
}

func TestUnknownOutput(t *testing.T) {
	cfg := setup(t, "")

	_, _, err := run(t, "", "--config", cfg, "-o", "xml", "databases")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestNoConnection(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "databases")
	assert.ErrorIs(t, err, errNoConnection)
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "askdb dev\n"), out)
}
