package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"marionette/internal/catalog"
	"marionette/internal/controller"
	"marionette/internal/models"
	"marionette/internal/styles"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scheduledMsg:
		msg.fn()
		return m, nil

	case frameMsg:
		return m, frameTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		if m.ChatPending {
			m.UpdateViewport()
		}
		return m, cmd

	case suggestionMsg:
		m.Loading = false
		m.setNotice(m.Ctl.ApplyProposals(msg.names, msg.err))
		return m, nil

	case chatReplyMsg:
		m.Loading = false
		m.ChatPending = false
		out := m.Ctl.FinishChat(msg.reply)
		if out.Applied() {
			if id := m.lastAssistantID(); id != "" {
				m.ReplyActions[id] = out.Clips
			}
		}
		m.RefreshTranscript()
		m.setNotice(out)
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = min(max(msg.Width-10, 30), 60)
		styles.ContentWidth = ModalWidth - 6
		m.ModelViewport.Width = styles.ContentWidth
		m.ModelViewport.Height = min(max(msg.Height-15, 5), 20)

		m.updateLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(max(m.Viewport.Width-4, 20)),
		)
		m.RefreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ModelSelectorOpen {
		return m.handleModelSelectorKey(msg)
	}
	if m.ShortcutsOpen {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "enter", "?", "ctrl+s":
			m.ShortcutsOpen = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.setFocus(CycleFocus(m.Focus, 1))
		return m, nil
	case "shift+tab":
		m.setFocus(CycleFocus(m.Focus, -1))
		return m, nil
	case "esc":
		m.setFocus(FocusBrowse)
		return m, nil
	case "ctrl+x":
		m.Ctl.StopAll()
		m.Notice, m.NoticeIsErr = "stopped", false
		return m, nil
	case "ctrl+q":
		m.Ctl.StopQueue()
		m.Notice, m.NoticeIsErr = "queue cleared", false
		return m, nil
	case "ctrl+t":
		machine := m.Ctl.Machine()
		machine.SetAutoIdle(!machine.AutoIdle())
		m.Notice, m.NoticeIsErr = idleSummary(machine.AutoIdle(), machine.IdleDelay()), false
		return m, nil
	case "ctrl+up", "ctrl+down":
		step := 1
		if msg.String() == "ctrl+down" {
			step = -1
		}
		machine := m.Ctl.Machine()
		machine.SetIdleDelay(StepIdleDelay(machine.IdleDelay(), step))
		m.Notice, m.NoticeIsErr = idleSummary(machine.AutoIdle(), machine.IdleDelay()), false
		return m, nil
	case "ctrl+b":
		m.ModelSelectorOpen = true
		m.ShortcutsOpen = false
		m.UpdateModelSelectorContent()
		m.SyncModelViewportScroll()
		return m, nil
	case "ctrl+s":
		m.ShortcutsOpen = true
		m.ModelSelectorOpen = false
		return m, nil
	}

	mode, ok := m.Focus.Mode()
	if !ok {
		return m.handleBrowseKey(msg)
	}
	if mode == models.ModeChat && isNewlineShortcut(msg) {
		m.ChatInput.InsertString("\n")
		m.updateLayout()
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		return m.submit(mode)
	}
	return m.forwardToFocused(msg)
}

func (m *Model) submit(mode models.InputMode) (tea.Model, tea.Cmd) {
	if mode == models.ModeChat {
		return m.submitChat()
	}
	return m.submitCommand()
}

func (m *Model) handleModelSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(models.AvailableModels)
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+b":
		m.ModelSelectorOpen = false
	case "up", "k":
		m.SelectedModelIndex = (m.SelectedModelIndex - 1 + n) % n
		m.SyncModelViewportScroll()
		m.UpdateModelSelectorContent()
	case "down", "j":
		m.SelectedModelIndex = (m.SelectedModelIndex + 1) % n
		m.SyncModelViewportScroll()
		m.UpdateModelSelectorContent()
	case "enter":
		m.CurrentModel = models.AvailableModels[m.SelectedModelIndex]
		if m.LLM != nil {
			m.LLM.SetModel(m.CurrentModel.ID)
		}
		m.log.Info().Str("model", m.CurrentModel.ID).Msg("model selected")
		m.ModelSelectorOpen = false
	}
	return m, nil
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tabs := CategoryTabs(m.Ctl.Categories())
	shown, _ := VisibleClips(m.filteredClips(), catalog.VisibleLimit)

	switch msg.String() {
	case "up":
		if m.ClipCursor > 0 {
			m.ClipCursor--
		}
		return m, nil
	case "down":
		if m.ClipCursor < len(shown)-1 {
			m.ClipCursor++
		}
		return m, nil
	case "left":
		m.CategoryIdx = (m.CategoryIdx - 1 + len(tabs)) % len(tabs)
		m.ClipCursor = 0
		return m, nil
	case "right":
		m.CategoryIdx = (m.CategoryIdx + 1) % len(tabs)
		m.ClipCursor = 0
		return m, nil
	case "enter":
		if m.ClipCursor < len(shown) {
			m.setNotice(m.Ctl.Select(shown[m.ClipCursor]))
		}
		return m, nil
	}

	before := m.SearchInput.Value()
	next, cmd := m.forwardToFocused(msg)
	if m.SearchInput.Value() != before {
		m.ClipCursor = 0
	}
	return next, cmd
}

func (m *Model) forwardToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.Focus {
	case FocusBrowse:
		m.SearchInput, cmd = m.SearchInput.Update(msg)
	case FocusCommand:
		m.CommandInput, cmd = m.CommandInput.Update(msg)
	case FocusChat:
		m.ChatInput, cmd = m.ChatInput.Update(msg)
		m.updateLayout()
	}
	var vpCmd tea.Cmd
	m.Viewport, vpCmd = m.Viewport.Update(msg)
	return m, tea.Batch(cmd, vpCmd)
}

func (m *Model) submitCommand() (tea.Model, tea.Cmd) {
	out, fallback, err := m.Ctl.Command(m.CommandInput.Value())
	if err != nil {
		m.rejected(err)
		return m, nil
	}
	m.CommandInput.Reset()
	if fallback == nil {
		m.setNotice(out)
		return m, nil
	}

	m.Loading = true
	m.Notice, m.NoticeIsErr = "asking "+m.CurrentModel.Name+"…", false
	ctx := m.ctx
	return m, tea.Batch(func() tea.Msg {
		names, err := fallback(ctx)
		return suggestionMsg{names: names, err: err}
	}, m.Spinner.Tick)
}

func (m *Model) submitChat() (tea.Model, tea.Cmd) {
	req, err := m.Ctl.BeginChat(m.ChatInput.Value())
	if err != nil {
		m.rejected(err)
		return m, nil
	}
	m.ChatInput.Reset()
	m.updateLayout()
	m.Loading = true
	m.ChatPending = true
	m.Notice = ""
	m.RefreshTranscript()

	ctx := m.ctx
	return m, tea.Batch(func() tea.Msg {
		return chatReplyMsg{reply: req.Run(ctx)}
	}, m.Spinner.Tick)
}

func (m *Model) rejected(err error) {
	switch {
	case errors.Is(err, controller.ErrEmptyInput):
	case errors.Is(err, controller.ErrBusy):
		m.Notice, m.NoticeIsErr = "still waiting for the last request", true
	default:
		m.Notice, m.NoticeIsErr = err.Error(), true
	}
}

func (m *Model) setNotice(out controller.Outcome) {
	m.Notice, m.NoticeIsErr = OutcomeNotice(out)
	if out.Err != nil {
		m.log.Warn().Err(out.Err).Str("source", string(out.Source)).Msg("request failed")
	}
}

func (m *Model) setFocus(f Focus) {
	m.Focus = f
	m.SearchInput.Blur()
	m.CommandInput.Blur()
	m.ChatInput.Blur()
	switch f {
	case FocusBrowse:
		m.SearchInput.Focus()
	case FocusCommand:
		m.CommandInput.Focus()
	case FocusChat:
		m.ChatInput.Focus()
	}
	m.updateLayout()
}

func (m *Model) filteredClips() []models.ClipName {
	tabs := CategoryTabs(m.Ctl.Categories())
	if m.CategoryIdx >= len(tabs) {
		m.CategoryIdx = 0
	}
	return catalog.Filter(m.Ctl.Clips(), m.Ctl.Categories(), m.SearchInput.Value(), tabs[m.CategoryIdx])
}

func (m *Model) lastAssistantID() string {
	msgs, err := m.Transcript.Messages()
	if err != nil {
		return ""
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Author == models.RoleAssistant {
			return msgs[i].ID
		}
	}
	return ""
}

// RefreshTranscript re-renders the chat from the log.
func (m *Model) RefreshTranscript() {
	msgs, err := m.Transcript.Messages()
	if err != nil {
		m.Messages = []string{styles.ErrorStyle.Render(fmt.Sprintf("Transcript error: %v", err))}
		m.UpdateViewport()
		return
	}
	now := time.Now()
	m.Messages = m.Messages[:0]
	for _, msg := range msgs {
		switch msg.Author {
		case models.RoleUser:
			m.Messages = append(m.Messages, FormatUserMessage(msg, m.Viewport.Width, now))
		case models.RoleAssistant:
			content := msg.Text
			if m.Renderer != nil {
				if rendered, err := m.Renderer.Render(msg.Text); err == nil {
					content = strings.TrimSpace(rendered)
				}
			}
			entry := FormatAIMessage(content)
			if acts := FormatActions(m.ReplyActions[msg.ID]); acts != "" {
				entry += "\n" + acts
			}
			m.Messages = append(m.Messages, entry)
		}
	}
	m.UpdateViewport()
}

func (m *Model) updateLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := max(m.WindowWidth-6, 20)
	lines := min(max(WrappedLineCount(m.ChatInput.Value(), inputWidth-2), 1), m.ChatInput.MaxHeight)
	m.ChatInput.SetWidth(inputWidth)
	m.ChatInput.SetHeight(lines)
	m.CommandInput.Width = inputWidth - 4
	m.SearchInput.Width = BrowserPanelWidth - 8

	inputHeight := 1
	if m.Focus == FocusChat {
		inputHeight = m.ChatInput.Height()
	}
	// title, notice, input box with border, bottom bar with border
	reserved := 2 + inputHeight + 2 + 2
	body := max(m.WindowHeight-reserved, 8)

	if m.compact() {
		m.Viewport.Width = m.WindowWidth - 6
		m.Viewport.Height = max(body-leftColumnHeight-2, 4)
	} else {
		m.Viewport.Width = min(m.WindowWidth-BrowserPanelWidth-8, MaxChatWidth)
		m.Viewport.Height = body - 3
	}
	m.Progress.Width = BrowserPanelWidth - 6
}

func (m *Model) compact() bool {
	return m.WindowWidth < CompactWidthThresh
}

func idleSummary(enabled bool, delay time.Duration) string {
	if !enabled {
		return "auto-idle off"
	}
	return fmt.Sprintf("auto-idle after %s", delay)
}
