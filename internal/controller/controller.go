// Package controller owns the avatar's state: the animation state machine,
// the clip catalog snapshot, the chat transcript and the busy flag. Every
// method must be called from the single event-handling goroutine; only the
// Fallback and ChatRequest values it hands out may run elsewhere.
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"marionette/internal/anim"
	"marionette/internal/assistant"
	"marionette/internal/catalog"
	"marionette/internal/intent"
	"marionette/internal/models"
)

var (
	ErrBusy       = errors.New("another request is in progress")
	ErrEmptyInput = errors.New("empty input")
)

// Source records where an action came from.
type Source string

const (
	SourceDirect    Source = "direct"
	SourceKeyword   Source = "keyword"
	SourceModel     Source = "model"
	SourceAssistant Source = "assistant"
)

// Outcome describes what an applied request did.
type Outcome struct {
	Source Source
	Clips  []models.ClipName
	// Proposals are the names the hosted model suggested, before resolution.
	Proposals []string
	Err       error
}

// Applied reports whether any clip was started.
func (o Outcome) Applied() bool { return len(o.Clips) > 0 }

// Fallback runs the hosted-model suggestion for a command that had no
// keyword match. It is safe to call off the event loop.
type Fallback func(ctx context.Context) ([]string, error)

// ChatRequest is an assistant call in flight.
type ChatRequest struct {
	Text  string
	clips []models.ClipName
	asst  *assistant.Adapter
}

// Run performs the network call. It never fails; errors are folded into the reply.
func (r ChatRequest) Run(ctx context.Context) assistant.Reply {
	return r.asst.Ask(ctx, r.Text, r.clips)
}

type Controller struct {
	machine *anim.Machine
	matcher *intent.Matcher
	asst    *assistant.Adapter
	log     zerolog.Logger

	clips      []models.ClipName
	categories catalog.Categories

	busy bool
}

func New(machine *anim.Machine, matcher *intent.Matcher, asst *assistant.Adapter, log zerolog.Logger) *Controller {
	return &Controller{
		machine:    machine,
		matcher:    matcher,
		asst:       asst,
		log:        log,
		categories: catalog.Categories{},
	}
}

// LoadClips installs the provider's clip list.
func (c *Controller) LoadClips(clips []models.ClipName) {
	c.clips = append([]models.ClipName(nil), clips...)
	c.categories = catalog.Categorize(c.clips)
	c.machine.SetClips(c.clips)
	c.log.Info().Int("clips", len(c.clips)).Int("categories", len(c.categories)).Msg("catalog loaded")
}

func (c *Controller) Clips() []models.ClipName { return c.clips }

func (c *Controller) Categories() catalog.Categories { return c.categories }

func (c *Controller) Machine() *anim.Machine { return c.machine }

func (c *Controller) State() anim.State { return c.machine.State() }

func (c *Controller) Busy() bool { return c.busy }

// Greet opens the session with the assistant's greeting.
func (c *Controller) Greet(greeting string) {
	if strings.TrimSpace(greeting) == "" {
		return
	}
	c.asst.Finish(assistant.Reply{Message: greeting})
}

// Select plays clip directly, looping.
func (c *Controller) Select(clip models.ClipName) Outcome {
	c.machine.PlaySingle(clip)
	return Outcome{Source: SourceDirect, Clips: []models.ClipName{clip}}
}

// StopAll stops whatever is playing.
func (c *Controller) StopAll() {
	c.machine.Stop()
}

// StopQueue abandons a running queue. Outside a queue it does nothing.
func (c *Controller) StopQueue() {
	if c.machine.State().Phase == anim.PhaseQueue {
		c.machine.Stop()
	}
}

// PlaybackFinished forwards the stage's play-once completion.
func (c *Controller) PlaybackFinished() {
	c.machine.PlaybackFinished()
}

// Command handles a free-text animation command. A keyword match is applied
// immediately and returned with a nil Fallback. Otherwise the controller
// becomes busy and the caller must run the Fallback and pass its result to
// ApplyProposals.
func (c *Controller) Command(text string) (Outcome, Fallback, error) {
	if c.busy {
		return Outcome{}, nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, nil, ErrEmptyInput
	}

	if clips, ok := c.matcher.Match(text, c.clips); ok {
		c.apply(clips)
		c.log.Info().Str("text", text).Strs("clips", clipStrings(clips)).Msg("keyword match")
		return Outcome{Source: SourceKeyword, Clips: clips}, nil, nil
	}

	c.busy = true
	snapshot := append([]models.ClipName(nil), c.clips...)
	asst := c.asst
	return Outcome{Source: SourceModel}, func(ctx context.Context) ([]string, error) {
		return asst.Suggest(ctx, text, snapshot)
	}, nil
}

// ApplyProposals resolves the model's suggestion and plays it, clearing the
// busy flag. Unresolvable or failed suggestions leave the avatar unchanged.
func (c *Controller) ApplyProposals(proposals []string, err error) Outcome {
	c.busy = false
	out := Outcome{Source: SourceModel, Proposals: proposals, Err: err}
	if err != nil {
		c.log.Warn().Err(err).Msg("command suggestion failed")
		return out
	}
	out.Clips = intent.Resolve(proposals, c.clips)
	c.apply(out.Clips)
	c.log.Info().Strs("proposals", proposals).Strs("clips", clipStrings(out.Clips)).Msg("model suggestion")
	return out
}

// BeginChat records the user's message and returns the request to run.
func (c *Controller) BeginChat(text string) (ChatRequest, error) {
	if c.busy {
		return ChatRequest{}, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatRequest{}, ErrEmptyInput
	}
	c.busy = true
	c.asst.Begin(text)
	return ChatRequest{
		Text:  text,
		clips: append([]models.ClipName(nil), c.clips...),
		asst:  c.asst,
	}, nil
}

// FinishChat records the assistant's reply and plays the actions it chose.
func (c *Controller) FinishChat(reply assistant.Reply) Outcome {
	c.busy = false
	c.asst.Finish(reply)
	out := Outcome{Source: SourceAssistant, Proposals: reply.Actions, Err: reply.Err}
	if reply.Err != nil {
		return out
	}
	out.Clips = intent.Resolve(reply.Actions, c.clips)
	c.apply(out.Clips)
	return out
}

// Chat runs a whole assistant exchange synchronously.
func (c *Controller) Chat(ctx context.Context, text string) (assistant.Reply, Outcome, error) {
	req, err := c.BeginChat(text)
	if err != nil {
		return assistant.Reply{}, Outcome{}, err
	}
	reply := req.Run(ctx)
	return reply, c.FinishChat(reply), nil
}

// apply starts resolved clips: one loops, several form a queue.
func (c *Controller) apply(clips []models.ClipName) {
	switch len(clips) {
	case 0:
	case 1:
		c.machine.PlaySingle(clips[0])
	default:
		c.machine.PlayQueue(clips)
	}
}

func clipStrings(clips []models.ClipName) []string {
	out := make([]string, len(clips))
	for i, c := range clips {
		out[i] = catalog.DisplayName(c)
	}
	return out
}
