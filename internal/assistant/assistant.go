// Package assistant asks a hosted language model to reply to the user and to
// choose avatar actions, and turns its answer into something safe to apply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"marionette/internal/catalog"
	"marionette/internal/intent"
	"marionette/internal/models"
)

var ErrMalformedReply = errors.New("malformed assistant reply")

// Generator is the hosted model.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// Transcript receives the conversation.
type Transcript interface {
	Append(author, text string) (models.ChatMessage, error)
}

// Reply is the assistant's answer. Err is set when Message is the fallback.
type Reply struct {
	Message string
	Actions []string
	Err     error
}

type Adapter struct {
	gen        Generator
	transcript Transcript
	persona    string
	logger     zerolog.Logger
}

type Option func(*Adapter)

func WithPersona(p string) Option {
	return func(a *Adapter) {
		if p != "" {
			a.persona = p
		}
	}
}

func WithLogger(l zerolog.Logger) Option { return func(a *Adapter) { a.logger = l } }

func New(gen Generator, transcript Transcript, opts ...Option) *Adapter {
	a := &Adapter{
		gen:        gen,
		transcript: transcript,
		persona:    DefaultPersona,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Converse records the user's text, asks the model and records the reply.
// It never returns an error: failures become the fallback message.
func (a *Adapter) Converse(ctx context.Context, text string, clips []models.ClipName) Reply {
	a.Begin(text)
	reply := a.Ask(ctx, text, clips)
	a.Finish(reply)
	return reply
}

// Begin appends the user's message to the transcript.
func (a *Adapter) Begin(text string) {
	if _, err := a.transcript.Append(models.RoleUser, text); err != nil {
		a.logger.Error().Err(err).Msg("append user message")
	}
}

// Finish appends the assistant's message to the transcript.
func (a *Adapter) Finish(reply Reply) {
	if _, err := a.transcript.Append(models.RoleAssistant, reply.Message); err != nil {
		a.logger.Error().Err(err).Msg("append assistant message")
	}
}

// Ask performs the model call without touching the transcript, so it can run
// off the event loop.
func (a *Adapter) Ask(ctx context.Context, text string, clips []models.ClipName) Reply {
	system := fmt.Sprintf(chatSystemPrompt, a.persona, catalog.Names(clips), text)
	raw, err := a.gen.Generate(ctx, text, system)
	if err != nil {
		a.logger.Warn().Err(err).Msg("assistant request failed")
		return Reply{Message: FallbackMessage, Err: err}
	}
	reply, err := ParseReply(raw)
	if err != nil {
		a.logger.Warn().Err(err).Str("raw", raw).Msg("assistant reply rejected")
		return Reply{Message: FallbackMessage, Err: err}
	}
	a.logger.Debug().Strs("actions", reply.Actions).Msg("assistant reply")
	return reply
}

// Suggest asks the model for animation names matching a free-text command.
// An empty result means the model found nothing suitable.
func (a *Adapter) Suggest(ctx context.Context, text string, clips []models.ClipName) ([]string, error) {
	system := fmt.Sprintf(commandSystemPrompt, catalog.Names(clips), text)
	raw, err := a.gen.Generate(ctx, text, system)
	if err != nil {
		return nil, err
	}
	names := intent.ParseSuggestion(raw)
	a.logger.Debug().Str("raw", raw).Strs("names", names).Msg("command suggestion")
	return names, nil
}

var (
	openFence  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	closeFence = regexp.MustCompile("\\s*```$")
)

// StripFence removes a surrounding markdown code fence, if any.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	s = openFence.ReplaceAllString(s, "")
	s = closeFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseReply validates raw against {"message": string, "actions": [string]}.
// "actions" may be absent or null; anything else of the wrong shape is rejected.
func ParseReply(raw string) (Reply, error) {
	body := StripFence(raw)
	if body == "" {
		return Reply{}, fmt.Errorf("%w: empty body", ErrMalformedReply)
	}
	if !gjson.Valid(body) {
		return Reply{}, fmt.Errorf("%w: invalid JSON", ErrMalformedReply)
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return Reply{}, fmt.Errorf("%w: not an object", ErrMalformedReply)
	}

	msg := root.Get("message")
	if msg.Type != gjson.String {
		return Reply{}, fmt.Errorf("%w: message must be a string", ErrMalformedReply)
	}
	reply := Reply{Message: msg.String()}
	if strings.TrimSpace(reply.Message) == "" {
		return Reply{}, fmt.Errorf("%w: empty message", ErrMalformedReply)
	}

	acts := root.Get("actions")
	switch {
	case !acts.Exists() || acts.Type == gjson.Null:
	case acts.IsArray():
		for _, item := range acts.Array() {
			if item.Type != gjson.String {
				return Reply{}, fmt.Errorf("%w: actions must be strings", ErrMalformedReply)
			}
			reply.Actions = append(reply.Actions, item.String())
		}
	default:
		return Reply{}, fmt.Errorf("%w: actions must be an array", ErrMalformedReply)
	}
	return reply, nil
}
