package config

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

const keyringService = "askdb"

// LLMSecretKey is the keyring key of a completion provider's API key.
func LLMSecretKey(provider string) string {
	return "llm:" + provider
}

// ConnectionSecretKey is the keyring key of a saved connection's password.
func ConnectionSecretKey(name string) string {
	return "conn:" + name
}

// GetSecret looks up key in the OS keyring. A missing entry or an unavailable
// keyring both report false.
func GetSecret(key string) (string, bool) {
	v, err := keyring.Get(keyringService, key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// SetSecret stores value under key in the OS keyring.
func SetSecret(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// DeleteSecret removes key from the OS keyring. Deleting a missing key is not
// an error.
func DeleteSecret(key string) error {
	if err := keyring.Delete(keyringService, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// SpeechKey returns the OpenAI key used for transcription and speech. It is
// the completion key when the provider is OpenAI, else OPENAI_API_KEY or the
// keyring entry of the openai provider.
func (cfg *Config) SpeechKey() string {
	if (cfg.LLM.Provider == "" || cfg.LLM.Provider == "openai") && cfg.LLM.APIKey != "" {
		return cfg.LLM.APIKey
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	key, _ := GetSecret(LLMSecretKey("openai"))
	return key
}

// resolveSecrets fills empty passwords and the API key from the keyring.
func resolveSecrets(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		if key, ok := GetSecret(LLMSecretKey(cfg.LLM.Provider)); ok {
			cfg.LLM.APIKey = key
			cfg.LLM.keySource = "keyring"
		}
	}
	for i := range cfg.Connections {
		c := &cfg.Connections[i]
		if c.Password != "" || c.fromEnv || c.Driver == "sqlite" {
			continue
		}
		if pw, ok := GetSecret(ConnectionSecretKey(c.Name)); ok {
			c.Password = pw
			c.inKeyring = true
		}
	}
}
