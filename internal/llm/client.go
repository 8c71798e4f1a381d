// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrNoAPIKey      = errors.New("API key is required")
)

// Config holds the connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Usage is the running token count for a session.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Client generates text with a hosted model. It is safe for concurrent use;
// generation runs off the UI goroutine.
type Client struct {
	client openai.Client
	log    zerolog.Logger

	mu    sync.RWMutex
	model string

	promptTokens     atomic.Int64
	completionTokens atomic.Int64
}

func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("X-Title", "Marionette"),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client: openai.NewClient(opts...),
		log:    log,
		model:  cfg.Model,
	}, nil
}

// Model returns the model ID used for new requests.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel switches the model for subsequent requests.
func (c *Client) SetModel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = id
}

// Usage returns the tokens consumed so far.
func (c *Client) Usage() Usage {
	return Usage{
		PromptTokens:     c.promptTokens.Load(),
		CompletionTokens: c.completionTokens.Load(),
	}
}

// Generate sends prompt as the user turn, with an optional system instruction,
// and returns the first choice's text.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	model := c.Model()
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("model", model).Msg("completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	c.promptTokens.Add(resp.Usage.PromptTokens)
	c.completionTokens.Add(resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.log.Debug().
		Str("model", model).
		Dur("elapsed", time.Since(start)).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("completion")
	return resp.Choices[0].Message.Content, nil
}

// Offline stands in for a Client when none could be built. Every call fails
// with Err, so callers fall back the same way they do on transport errors.
type Offline struct {
	Err error
}

func (o Offline) Generate(context.Context, string, string) (string, error) {
	return "", o.Err
}
