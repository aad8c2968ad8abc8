package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/askdb/internal/config"
	"github.com/joacominatel/askdb/internal/schema"
)

type fakeCompleter struct {
	model    string
	messages []Message
	reply    string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, model string, messages []Message) (string, error) {
	f.model = model
	f.messages = messages
	return f.reply, f.err
}

func usersSchema() *schema.Description {
	return schema.Build("shop", []schema.ColumnRef{
		{Table: "users", Column: "id"},
		{Table: "users", Column: "name"},
	})
}

func TestSynthesize_ForwardsPromptUnmodified(t *testing.T) {
	fake := &fakeCompleter{reply: "\n  SELECT name FROM users;  \n"}
	s := NewSynthesizer(fake, "gpt-4o", nil)

	request := "  list every user's name  "
	sql, err := s.Synthesize(context.Background(), request, usersSchema())
	require.NoError(t, err)

	assert.Equal(t, "SELECT name FROM users;", sql)
	assert.Equal(t, "gpt-4o", fake.model)
	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "Generate only SQL query."},
		{Role: RoleSystem, Content: "Database Schema:\n\nTable 'users':\n  - id\n  - name"},
		{Role: RoleUser, Content: request},
	}, fake.messages)
}

func TestSynthesize_ReturnsNonSQLVerbatim(t *testing.T) {
	fake := &fakeCompleter{reply: "I cannot help with that."}
	s := NewSynthesizer(fake, "m", nil)

	out, err := s.Synthesize(context.Background(), "delete everything", usersSchema())
	require.NoError(t, err)
	assert.Equal(t, "I cannot help with that.", out)
}

func TestSynthesize_PropagatesError(t *testing.T) {
	boom := errors.New("rate limited")
	s := NewSynthesizer(&fakeCompleter{err: boom}, "m", nil)

	_, err := s.Synthesize(context.Background(), "x", usersSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": " SELECT 1; "}
			}]
		}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/", 256, option.WithMaxRetries(0))
	out, err := c.Complete(context.Background(), "gpt-4o", BuildMessages("one", usersSchema()))
	require.NoError(t, err)

	assert.Equal(t, " SELECT 1; ", out)
	assert.Equal(t, "gpt-4o", body.Model)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, Directive, body.Messages[0].Content)
	assert.Equal(t, "system", body.Messages[1].Role)
	assert.Equal(t, "user", body.Messages[2].Role)
	assert.Equal(t, "one", body.Messages[2].Content)
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-bad", srv.URL+"/", 0, option.WithMaxRetries(0))
	_, err := c.Complete(context.Background(), "gpt-4o", BuildMessages("x", usersSchema()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API error")
}

func TestAnthropicClient_Complete(t *testing.T) {
	var body struct {
		Model  string `json:"model"`
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [{"type": "text", "text": "SELECT 2"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient("ak-test", srv.URL+"/", 128, anthropicoption.WithMaxRetries(0))
	out, err := c.Complete(context.Background(), "claude-haiku-4-5", BuildMessages("two", usersSchema()))
	require.NoError(t, err)

	assert.Equal(t, "SELECT 2", out)
	assert.Equal(t, "claude-haiku-4-5", body.Model)
	require.Len(t, body.System, 1)
	assert.Equal(t, Directive+"\n\nDatabase Schema:\n\nTable 'users':\n  - id\n  - name", body.System[0].Text)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "two", body.Messages[0].Content[0].Text)
}

func TestNew(t *testing.T) {
	_, err := New(config.LLM{Provider: "openai"}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(config.LLM{Provider: "cohere", APIKey: "k"}, nil)
	assert.Error(t, err)

	s, err := New(config.LLM{Provider: "openai", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, s.Model())

	s, err = New(config.LLM{Provider: "anthropic", APIKey: "k", Model: "claude-x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-x", s.Model())
}
