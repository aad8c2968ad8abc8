// Package llm turns a natural-language request and a schema description into
// SQL text through a hosted completion model.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joacominatel/askdb/internal/schema"
)

// Role tags a message turn.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Directive is the first system turn of every synthesis request.
const Directive = "Generate only SQL query."

// Message is one role-tagged turn sent to a completion backend.
type Message struct {
	Role    Role
	Content string
}

// Completer sends messages to a completion backend and returns the text of the
// first choice.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// SQLSynthesizer produces SQL text for a request.
type SQLSynthesizer interface {
	Synthesize(ctx context.Context, request string, desc *schema.Description) (string, error)
}

// Synthesizer builds the fixed three-turn prompt and returns the model output
// verbatim apart from surrounding whitespace.
type Synthesizer struct {
	completer Completer
	model     string
	log       *slog.Logger
}

// NewSynthesizer creates a synthesizer for model.
func NewSynthesizer(c Completer, model string, log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{completer: c, model: model, log: log}
}

// Model returns the model identifier sent with every request.
func (s *Synthesizer) Model() string {
	return s.model
}

// BuildMessages returns the directive, the schema context and the raw request,
// in that order.
func BuildMessages(request string, desc *schema.Description) []Message {
	return []Message{
		{Role: RoleSystem, Content: Directive},
		{Role: RoleSystem, Content: "Database Schema:\n\n" + desc.String()},
		{Role: RoleUser, Content: request},
	}
}

// Synthesize asks the model for SQL. The returned text is not validated.
func (s *Synthesizer) Synthesize(ctx context.Context, request string, desc *schema.Description) (string, error) {
	messages := BuildMessages(request, desc)

	start := time.Now()
	out, err := s.completer.Complete(ctx, s.model, messages)
	duration := time.Since(start)
	if err != nil {
		s.log.Error("completion failed", "model", s.model, "messages", len(messages), "duration", duration, "error", err)
		return "", fmt.Errorf("synthesize: %w", err)
	}
	s.log.Debug("completion done", "model", s.model, "messages", len(messages), "duration", duration, "chars", len(out))

	return strings.TrimSpace(out), nil
}
