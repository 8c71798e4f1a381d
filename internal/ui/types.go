package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"marionette/internal/assistant"
	"marionette/internal/controller"
	"marionette/internal/llm"
	"marionette/internal/models"
	"marionette/internal/stage"
)

const (
	MaxChatWidth       = 100
	CompactWidthThresh = 100 // Width below which the chat moves under the stage
	BrowserPanelWidth  = 42
	FrameInterval      = 100 // ms between stage redraws
)

var ModalWidth = 60

// Focus is the panel receiving keystrokes.
type Focus int

const (
	FocusBrowse Focus = iota
	FocusCommand
	FocusChat
)

func (f Focus) String() string {
	switch f {
	case FocusCommand:
		return "COMMAND"
	case FocusChat:
		return "CHAT"
	default:
		return "BROWSE"
	}
}

// Mode maps a focus onto the input mode it feeds, if any.
func (f Focus) Mode() (models.InputMode, bool) {
	switch f {
	case FocusCommand:
		return models.ModeCommand, true
	case FocusChat:
		return models.ModeChat, true
	default:
		return 0, false
	}
}

// ModelSwitcher is the part of the LLM client the TUI controls.
type ModelSwitcher interface {
	Model() string
	SetModel(id string)
	Usage() llm.Usage
}

// Transcript is the chat log as the TUI reads it.
type Transcript interface {
	Messages() ([]models.ChatMessage, error)
}

type (
	// scheduledMsg carries a timer callback onto the event loop.
	scheduledMsg struct{ fn func() }
	frameMsg     struct{}

	suggestionMsg struct {
		names []string
		err   error
	}
	chatReplyMsg struct{ reply assistant.Reply }
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	Ctl        *controller.Controller
	Stage      *stage.Stage
	Transcript Transcript
	LLM        ModelSwitcher // nil when no API key is configured

	Viewport      viewport.Model
	ModelViewport viewport.Model
	ChatInput     textarea.Model
	CommandInput  textinput.Model
	SearchInput   textinput.Model
	Spinner       spinner.Model
	Progress      progress.Model
	Renderer      *glamour.TermRenderer

	Focus    Focus
	Messages []string
	// ReplyActions remembers which clips each assistant message started.
	ReplyActions map[string][]models.ClipName
	Notice       string
	NoticeIsErr  bool
	Loading      bool
	ChatPending  bool
	WindowWidth  int
	WindowHeight int

	CategoryIdx int
	ClipCursor  int

	ModelSelectorOpen  bool
	ShortcutsOpen      bool
	CurrentModel       models.AIModel
	SelectedModelIndex int
}
