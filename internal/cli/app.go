package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"marionette/internal/anim"
	"marionette/internal/assistant"
	"marionette/internal/chatlog"
	"marionette/internal/config"
	"marionette/internal/controller"
	"marionette/internal/intent"
	"marionette/internal/llm"
	"marionette/internal/logging"
	"marionette/internal/stage"
)

// app is everything a command needs, wired once per invocation.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	log        zerolog.Logger
	stage      *stage.Stage
	transcript *chatlog.Log
	client     *llm.Client // nil when running offline
	ctl        *controller.Controller
}

// newApp loads configuration and wires the avatar stack onto sched. console,
// when set, receives log lines in addition to the log file.
func newApp(flags *globalFlags, sched anim.Scheduler, console io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.asset != "" {
		cfg.Avatar.AssetPath = flags.asset
	}
	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{Dir: cfg.Log.Dir, Level: level, Console: console})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, log: logger.Component("cli")}
	if err := a.wire(sched); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(sched anim.Scheduler) error {
	clips := stage.Builtin()
	if path := a.cfg.Avatar.AssetPath; path != "" {
		loaded, err := stage.Open(path)
		if err != nil {
			return err
		}
		clips = loaded
		a.log.Info().Str("asset", path).Int("clips", len(clips)).Msg("avatar loaded")
	}
	a.stage = stage.New(clips, sched, a.logger.Component("stage"))

	machine := anim.NewMachine(a.stage, sched,
		anim.WithLogger(a.logger.Component("anim")),
		anim.WithAutoIdle(a.cfg.Avatar.AutoIdle),
		anim.WithIdleDelay(a.cfg.Avatar.IdleDelay),
	)

	transcript, err := chatlog.Open()
	if err != nil {
		return err
	}
	a.transcript = transcript

	var gen assistant.Generator
	client, err := llm.New(a.cfg.LLMClient(), a.logger.Component("llm"))
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		a.log.Warn().Msg("no API key configured, running offline")
		gen = llm.Offline{Err: err}
	case err != nil:
		return fmt.Errorf("init model client: %w", err)
	default:
		a.client = client
		gen = client
	}

	asst := assistant.New(gen, transcript,
		assistant.WithPersona(a.cfg.Assistant.Persona),
		assistant.WithLogger(a.logger.Component("assistant")),
	)
	a.ctl = controller.New(machine, intent.NewMatcher(), asst, a.logger.Component("controller"))
	a.stage.OnFinished(a.ctl.PlaybackFinished)
	a.ctl.LoadClips(a.stage.ClipNames())
	return nil
}

// Offline reports whether no model client is available.
func (a *app) Offline() bool { return a.client == nil }

func (a *app) Close() {
	if a.client != nil {
		u := a.client.Usage()
		a.log.Info().Int64("prompt_tokens", u.PromptTokens).Int64("completion_tokens", u.CompletionTokens).Msg("session usage")
	}
	if a.transcript != nil {
		if err := a.transcript.Close(); err != nil {
			a.log.Error().Err(err).Msg("close transcript")
		}
	}
	_ = a.logger.Close()
}
