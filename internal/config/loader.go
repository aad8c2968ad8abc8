package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configDir  = ".askdb"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "ASKDB"

	// envConnectionName names the connection built from HOST_NAME and friends.
	envConnectionName = "env"
	envDefaultPort    = 33094
)

// Load reads the configuration from path, or ~/.askdb/config.yaml when path is
// empty. A .env file in the working directory is loaded first. A missing
// config file yields the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		path = p
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType(configType)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path

	if cfg.LLM.APIKey != "" {
		cfg.LLM.keySource = "file"
		if os.Getenv(envPrefix+"_LLM_API_KEY") != "" {
			cfg.LLM.keySource = "env"
		}
	}
	applyEnv(cfg)
	resolveSecrets(cfg)

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("preferences.theme", "default")
	v.SetDefault("preferences.default_connection", "")
	v.SetDefault("preferences.output", "table")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("voice.enabled", false)
	v.SetDefault("voice.record_command", "arecord -q -d 5 -f cd {file}")
	v.SetDefault("voice.player_command", "aplay -q {file}")
	v.SetDefault("voice.transcribe_model", "whisper-1")
	v.SetDefault("voice.speech_model", "tts-1")
	v.SetDefault("voice.speech_voice", "alloy")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv honours the plain variable names used by earlier deployments:
// HOST_NAME, PORT_NAME, USER_NAME and PASSWORD describe a MySQL server, and
// OPENAI_API_KEY or ANTHROPIC_API_KEY provide the completion key.
func applyEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		var name string
		switch cfg.LLM.Provider {
		case "anthropic":
			name = "ANTHROPIC_API_KEY"
		default:
			name = "OPENAI_API_KEY"
		}
		if key := os.Getenv(name); key != "" {
			cfg.LLM.APIKey = key
			cfg.LLM.keySource = "env"
		}
	}

	host := os.Getenv("HOST_NAME")
	if host == "" || cfg.HasConnection(envConnectionName) {
		return
	}
	port := envDefaultPort
	if p, err := strconv.Atoi(os.Getenv("PORT_NAME")); err == nil && p > 0 {
		port = p
	}
	cfg.Connections = append(cfg.Connections, Connection{
		Name:     envConnectionName,
		Driver:   "mysql",
		Host:     host,
		Port:     port,
		Database: os.Getenv("DATABASE_NAME"),
		Username: os.Getenv("USER_NAME"),
		Password: os.Getenv("PASSWORD"),
		fromEnv:  true,
	})
}

// Save writes the configuration back to the file it was loaded from.
// Connections built from the environment are not written, nor are passwords
// and API keys held in the keyring or the environment.
func Save(cfg *Config) error {
	path := cfg.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	conns := make([]Connection, 0, len(cfg.Connections))
	for _, c := range cfg.Connections {
		if c.fromEnv {
			continue
		}
		if c.inKeyring {
			c.Password = ""
		}
		conns = append(conns, c)
	}

	llm := cfg.LLM
	if llm.keySource != "file" {
		llm.APIKey = ""
	}

	v := viper.New()
	v.Set("connections", conns)
	v.Set("preferences", cfg.Preferences)
	v.Set("llm", llm)
	v.Set("voice", cfg.Voice)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cfg.path = path
	return nil
}

// SaveConnection adds conn to the config and persists it. The password goes
// to the OS keyring when one is available, otherwise it stays in the file.
func SaveConnection(cfg *Config, conn Connection) error {
	if conn.Password != "" {
		if err := SetSecret(ConnectionSecretKey(conn.Name), conn.Password); err == nil {
			conn.inKeyring = true
		}
	}
	cfg.AddConnection(conn)
	return Save(cfg)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

// DefaultPath returns ~/.askdb/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile+"."+configType), nil
}

// Dir returns ~/.askdb.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
