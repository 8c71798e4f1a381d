package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", BaseURL: url, Model: "test/model", MaxRetries: 0}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

const okBody = `{
  "id": "cmpl-1",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "test/model",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "Run,Jump"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 42, "completion_tokens": 3, "total_tokens": 45}
}`

func TestGenerate(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, okBody, &got)
	c := newClient(t, srv.URL)

	text, err := c.Generate(context.Background(), "run then jump", "map commands")
	require.NoError(t, err)
	assert.Equal(t, "Run,Jump", text)

	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "map commands", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "run then jump", got.Messages[1].Content)

	assert.Equal(t, Usage{PromptTokens: 42, CompletionTokens: 3}, c.Usage())
}

func TestGenerate_NoSystemInstruction(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, okBody, &got)
	c := newClient(t, srv.URL)

	_, err := c.Generate(context.Background(), "hi", "")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	c := newClient(t, srv.URL)

	_, err := c.Generate(context.Background(), "hi", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_TransportError(t *testing.T) {
	srv := newServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`, nil)
	c := newClient(t, srv.URL)

	_, err := c.Generate(context.Background(), "hi", "")
	assert.Error(t, err)
}

func TestSetModel(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, okBody, &got)
	c := newClient(t, srv.URL)

	c.SetModel("other/model")
	assert.Equal(t, "other/model", c.Model())
	_, err := c.Generate(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "other/model", got.Model)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Model: "m"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoAPIKey)
	_, err = New(Config{APIKey: "k"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOffline(t *testing.T) {
	_, err := Offline{Err: ErrNoAPIKey}.Generate(context.Background(), "hi", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
