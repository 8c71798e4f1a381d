package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"marionette/internal/controller"
	"marionette/internal/models"
	"marionette/internal/stage"
	"marionette/internal/styles"
)

// Options wires the TUI to the rest of the application.
type Options struct {
	Controller *controller.Controller
	Stage      *stage.Stage
	Transcript Transcript
	LLM        ModelSwitcher
	Logger     zerolog.Logger
}

func New(opts Options) *Model {
	styles.InitTheme()
	promptStyle := lipgloss.NewStyle().Foreground(styles.CurrentTheme.Primary).Bold(true)
	placeholderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))

	ti := textarea.New()
	ti.Placeholder = "Talk to the receptionist..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 4
	ti.SetHeight(1)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = promptStyle
	ti.BlurredStyle.Prompt = promptStyle
	ti.FocusedStyle.Placeholder = placeholderStyle
	ti.BlurredStyle.Placeholder = placeholderStyle
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()

	cmd := textinput.New()
	cmd.Placeholder = "e.g. walk then jump, chạy rồi nhảy"
	cmd.Prompt = "» "
	cmd.PromptStyle = promptStyle
	cmd.PlaceholderStyle = placeholderStyle
	cmd.CharLimit = 200

	search := textinput.New()
	search.Placeholder = "search clips"
	search.Prompt = "/ "
	search.PromptStyle = lipgloss.NewStyle().Foreground(styles.CurrentTheme.Accent)
	search.PlaceholderStyle = placeholderStyle
	search.CharLimit = 40
	search.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.CurrentTheme.Primary)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = BrowserPanelWidth - 6

	log := opts.Logger
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		ctx:           ctx,
		cancel:        cancel,
		log:           log,
		Ctl:           opts.Controller,
		Stage:         opts.Stage,
		Transcript:    opts.Transcript,
		LLM:           opts.LLM,
		Viewport:      viewport.New(60, 15),
		ModelViewport: viewport.New(ModalWidth-4, 15),
		ChatInput:     ti,
		CommandInput:  cmd,
		SearchInput:   search,
		Spinner:       sp,
		Progress:      bar,
		Focus:         FocusBrowse,
		ReplyActions:  map[string][]models.ClipName{},
	}

	if m.LLM != nil {
		if mdl, idx, ok := models.FindModelByID(m.LLM.Model()); ok {
			m.CurrentModel = mdl
			m.SelectedModelIndex = idx
		} else {
			id := m.LLM.Model()
			m.CurrentModel = models.AIModel{ID: id, Name: id, Provider: "Custom"}
		}
	}
	m.RefreshTranscript()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.Spinner.Tick,
		frameTick(),
	)
}

func frameTick() tea.Cmd {
	return tea.Tick(FrameInterval*time.Millisecond, func(time.Time) tea.Msg { return frameMsg{} })
}

// Run starts the program and blocks until the user quits.
func Run(opts Options, sched *Scheduler) error {
	m := New(opts)
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	sched.Attach(p)
	_, err := p.Run()
	return err
}
