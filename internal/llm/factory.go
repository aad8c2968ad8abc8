package llm

import (
	"errors"
	"fmt"
	"log/slog"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/option"

	"github.com/joacominatel/askdb/internal/config"
)

// ErrNoAPIKey is returned when the configured provider has no API key.
var ErrNoAPIKey = errors.New("no API key configured")

// New builds a synthesizer for the configured provider.
func New(cfg config.LLM, log *slog.Logger) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNoAPIKey)
	}

	model := cfg.Model
	var c Completer
	switch cfg.Provider {
	case "", "openai":
		if model == "" {
			model = DefaultOpenAIModel
		}
		var opts []option.RequestOption
		if cfg.Timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
		}
		c = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.MaxTokens, opts...)
	case "anthropic":
		if model == "" {
			model = DefaultAnthropicModel
		}
		var opts []anthropicoption.RequestOption
		if cfg.Timeout > 0 {
			opts = append(opts, anthropicoption.WithRequestTimeout(cfg.Timeout))
		}
		c = NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.MaxTokens, opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return NewSynthesizer(c, model, log), nil
}
