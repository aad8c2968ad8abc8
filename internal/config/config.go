package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
	LLM         LLM          `mapstructure:"llm" yaml:"llm"`
	Voice       Voice        `mapstructure:"voice" yaml:"voice"`
	Log         Log          `mapstructure:"log" yaml:"log"`

	path string
}

// Connection represents a saved database connection profile.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`
	Path     string `mapstructure:"path" yaml:"path,omitempty"`

	fromEnv   bool
	inKeyring bool
}

// Preferences holds user preferences.
type Preferences struct {
	Theme             string `mapstructure:"theme" yaml:"theme"`
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
	Output            string `mapstructure:"output" yaml:"output"`
}

// LLM configures the completion backend.
type LLM struct {
	Provider  string        `mapstructure:"provider" yaml:"provider"`
	Model     string        `mapstructure:"model" yaml:"model,omitempty"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	MaxTokens int64         `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`

	keySource string
}

// Voice configures speech capture, transcription and playback.
type Voice struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	RecordCommand   string `mapstructure:"record_command" yaml:"record_command"`
	PlayerCommand   string `mapstructure:"player_command" yaml:"player_command"`
	TranscribeModel string `mapstructure:"transcribe_model" yaml:"transcribe_model"`
	SpeechModel     string `mapstructure:"speech_model" yaml:"speech_model"`
	SpeechVoice     string `mapstructure:"speech_voice" yaml:"speech_voice"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// Log configures the slog handler.
type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// Path returns the file the configuration was loaded from.
func (cfg *Config) Path() string {
	return cfg.path
}

// KeySource reports where the API key came from: "file", "env", "keyring" or "".
func (l LLM) KeySource() string {
	return l.keySource
}

var defaultPorts = map[string]int{
	"postgres":  5432,
	"mysql":     3306,
	"sqlserver": 1433,
}

// DefaultPort returns the well-known port of a driver, or 0.
func DefaultPort(driver string) int {
	return defaultPorts[driver]
}

// FromEnv reports whether the connection was built from environment variables.
func (c Connection) FromEnv() bool {
	return c.fromEnv
}

func (c Connection) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort(c.Driver)
}

func (c Connection) address() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(c.port()))
}

func (c Connection) userinfo() *url.Userinfo {
	if c.Username == "" {
		return nil
	}
	if c.Password != "" {
		return url.UserPassword(c.Username, c.Password)
	}
	return url.User(c.Username)
}

// DSN builds the driver-specific connection string from the profile.
func (c Connection) DSN() string {
	switch c.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.address()
		mc.DBName = c.Database
		return mc.FormatDSN()
	case "sqlserver":
		u := url.URL{Scheme: "sqlserver", User: c.userinfo(), Host: c.address()}
		if c.Database != "" {
			u.RawQuery = url.Values{"database": {c.Database}}.Encode()
		}
		return u.String()
	case "sqlite":
		if c.Path != "" {
			return c.Path
		}
		return c.Database
	default:
		u := url.URL{Scheme: "postgresql", User: c.userinfo(), Host: c.address(), Path: "/" + c.Database}
		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}
		return u.String()
	}
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	if c.Driver == "sqlite" {
		return "sqlite:" + c.DSN()
	}
	s := c.address()
	if c.Database != "" {
		s += "/" + c.Database
	}
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return c.Driver + "://" + s
}

// ParseDSN recognizes the driver from a connection string and parses it into
// a Connection. Unknown strings without a scheme are tried as MySQL DSNs.
func ParseDSN(dsn string) (Connection, error) {
	lower := strings.ToLower(dsn)
	var (
		conn Connection
		err  error
	)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		conn, err = parseURL(dsn, "postgres")
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "mssql://"):
		conn, err = parseURL(dsn, "sqlserver")
	case strings.HasPrefix(lower, "mysql://"):
		conn, err = parseURL(dsn, "mysql")
	case strings.HasPrefix(lower, "sqlite://"):
		conn = Connection{Driver: "sqlite", Path: dsn[len("sqlite://"):]}
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		conn = Connection{Driver: "sqlite", Path: dsn}
	default:
		conn, err = parseMySQL(dsn)
	}
	if err != nil {
		return Connection{}, err
	}

	if conn.Driver == "sqlite" {
		conn.Name = "sqlite-" + conn.Path
		return conn, nil
	}
	if conn.Port == 0 {
		conn.Port = DefaultPort(conn.Driver)
	}
	conn.Name = fmt.Sprintf("%s-%s-%d-%s", conn.Driver, conn.Host, conn.Port, conn.Database)
	return conn, nil
}

func parseURL(dsn, driver string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}

	conn := Connection{
		Driver:   driver,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}
	if driver == "sqlserver" {
		conn.Database = u.Query().Get("database")
	}
	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}
	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	return conn, nil
}

func parseMySQL(dsn string) (Connection, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	conn := Connection{
		Driver:   "mysql",
		Database: mc.DBName,
		Username: mc.User,
		Password: mc.Passwd,
	}
	host, portStr, err := net.SplitHostPort(mc.Addr)
	if err != nil {
		conn.Host = mc.Addr
	} else {
		conn.Host = host
		conn.Port, _ = strconv.Atoi(portStr)
	}
	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	_, ok := cfg.Connection(name)
	return ok
}

// Connection returns the profile with the given name.
func (cfg *Config) Connection(name string) (Connection, bool) {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}
