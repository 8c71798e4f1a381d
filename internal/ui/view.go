package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marionette/internal/anim"
	"marionette/internal/catalog"
	"marionette/internal/models"
	"marionette/internal/styles"
)

// stage panel plus a full clip browser, borders included
const leftColumnHeight = 6 + 20

func (m *Model) UpdateModelSelectorContent() {
	var items []string
	var lastProvider string
	for i, mdl := range models.AvailableModels {
		if mdl.Provider != lastProvider {
			if lastProvider != "" {
				items = append(items, "")
			}
			header := styles.ModalHeaderStyle.
				Foreground(styles.GetProviderColor(mdl.Provider)).
				Render(mdl.Provider)
			items = append(items, header)
			lastProvider = mdl.Provider
		}

		isSelected := i == m.SelectedModelIndex
		isCurrent := m.CurrentModel.ID == mdl.ID

		displayName := "  " + mdl.Name
		if isCurrent {
			displayName = "● " + mdl.Name
		}

		var styledItem string
		if isSelected {
			styledItem = styles.ModalSelectedStyle.Width(styles.ContentWidth).Render(displayName)
		} else {
			style := styles.ModalItemStyle.Width(styles.ContentWidth).Foreground(styles.FgText)
			if isCurrent {
				style = style.Foreground(styles.CurrentTheme.Secondary)
			}
			styledItem = style.Render(displayName)
		}
		items = append(items, styledItem)
	}
	m.ModelViewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m *Model) RenderModelSelector() string {
	title := styles.ModalTitleStyle.Render("Select AI Model")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.ModelViewport.View())

	hintText := "↑/↓: navigate • Enter: select • Esc: close"
	if m.LLM == nil {
		hintText = "offline: set OPENROUTER_API_KEY to use models • Esc: close"
	}
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render(hintText)

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Tab", "Cycle Browse / Command / Chat"},
		{"Esc", "Back to clip browser"},
		{"↑/↓ ←/→", "Pick clip / category (browse)"},
		{"Enter", "Play clip, run command, send"},
		{"Ctrl+X", "Stop all animations"},
		{"Ctrl+Q", "Stop animation queue"},
		{"Ctrl+T", "Toggle auto return to idle"},
		{"Ctrl+↑/↓", "Idle delay ±1s (1-10s)"},
		{"Ctrl+B", "Select AI Model"},
		{"Ctrl+S", "View Shortcuts (this menu)"},
		{"Ctrl+C", "Quit Application"},
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFCC80")).
		Bold(true).
		Width(12)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0E0E0"))

	var items []string
	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", keyStyle.Render(s.key), descStyle.Render(s.desc))
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...))
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderStage() string {
	width := BrowserPanelWidth - 4
	st := m.Ctl.State()
	cur, playing := m.Stage.Current()

	var clipLine string
	if playing {
		badge := styles.LoopBadgeStyle.Render(cur.Mode.String())
		if cur.Mode == models.LoopOnce {
			badge = styles.OnceBadgeStyle.Render(cur.Mode.String())
		}
		name := TruncateRunes(catalog.DisplayName(cur.Clip), width-8)
		clipLine = styles.ClipNameStyle.Render(name) + " " + badge
	} else {
		clipLine = lipgloss.NewStyle().Foreground(styles.FgMuted).Render("nothing playing")
	}

	var status string
	machine := m.Ctl.Machine()
	switch {
	case st.Phase == anim.PhaseQueue:
		status = m.renderQueue(st, width)
	case machine.TimerPending():
		status = lipgloss.NewStyle().Foreground(styles.FgWarning).
			Render(fmt.Sprintf("returning to idle in %s", machine.IdleDelay()))
	default:
		status = lipgloss.NewStyle().Foreground(styles.FgMuted).Render(idleSummary(machine.AutoIdle(), machine.IdleDelay()))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.PanelTitleStyle.Render("STAGE · "+st.Phase.String()),
		clipLine,
		m.Progress.ViewAs(m.Stage.Progress()),
		status,
	)
	return styles.PanelStyle.Width(BrowserPanelWidth).Render(body)
}

func (m *Model) renderQueue(st anim.State, width int) string {
	label := styles.PanelTitleStyle.Render("queue " + QueueProgress(st) + " ")
	chips := []string{label}
	used := lipgloss.Width(label)
	for i, clip := range st.Queue {
		style := styles.ChipStyle
		switch {
		case i < st.Index:
			style = styles.DoneChipStyle
		case i == st.Index:
			style = styles.ActiveChipStyle
		}
		chip := style.Render(catalog.DisplayName(clip))
		if used+lipgloss.Width(chip) > width {
			chips = append(chips, styles.PanelTitleStyle.Render("…"))
			break
		}
		used += lipgloss.Width(chip)
		chips = append(chips, chip)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, chips...)
}

func (m *Model) RenderBrowser() string {
	width := BrowserPanelWidth - 4
	tabs := CategoryTabs(m.Ctl.Categories())
	if m.CategoryIdx >= len(tabs) {
		m.CategoryIdx = 0
	}

	var tabParts []string
	for i, cat := range tabs {
		label := string(cat)
		if i == m.CategoryIdx {
			tabParts = append(tabParts, styles.ActiveTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, styles.TabStyle.Render(label))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Top, tabParts...)
	if lipgloss.Width(tabRow) > width {
		// Fall back to the active tab alone on narrow panels.
		tabRow = styles.ActiveTabStyle.Render(fmt.Sprintf("◂ %s ▸", tabs[m.CategoryIdx]))
	}

	shown, more := VisibleClips(m.filteredClips(), catalog.VisibleLimit)
	cur, playing := m.Stage.Current()

	var rows []string
	for i, clip := range shown {
		name := TruncateRunes(catalog.DisplayName(clip), width-2)
		switch {
		case m.Focus == FocusBrowse && i == m.ClipCursor:
			rows = append(rows, styles.SelectedClipStyle.Width(width).Render(name))
		case playing && cur.Clip == clip:
			rows = append(rows, styles.PlayingClipStyle.Render("▸"+name))
		default:
			rows = append(rows, styles.ClipItemStyle.Render(name))
		}
	}
	if len(shown) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(styles.FgMuted).Render("no clips match"))
	}
	if more > 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(styles.HintColor).Render(fmt.Sprintf("+%d more", more)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		tabRow,
		m.SearchInput.View(),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	panel := styles.PanelStyle
	if m.Focus == FocusBrowse {
		panel = styles.FocusedPanelStyle
	}
	return panel.Width(BrowserPanelWidth).Render(body)
}

func (m *Model) RenderChat() string {
	panel := styles.PanelStyle
	if m.Focus == FocusChat {
		panel = styles.FocusedPanelStyle
	}
	return panel.Render(m.Viewport.View())
}

func (m *Model) RenderInput() string {
	inputWidth := m.WindowWidth - 4
	// The browser has no text box of its own; show the command bar dimmed.
	mode, ok := m.Focus.Mode()
	box := styles.InputBoxStyle
	if !ok {
		box = box.BorderForeground(styles.CurrentTheme.Border)
	}
	field := m.CommandInput.View()
	if mode == models.ModeChat && ok {
		field = m.ChatInput.View()
	}
	return box.Width(inputWidth).Render(field)
}

func (m *Model) RenderNotice() string {
	if m.Loading {
		return m.Spinner.View() + " " + styles.NoticeStyle.Render(m.Notice)
	}
	if m.Notice == "" {
		return ""
	}
	if m.NoticeIsErr {
		return styles.ErrorStyle.Render(m.Notice)
	}
	return styles.NoticeStyle.Render(m.Notice)
}

func (m *Model) RenderBottomBar() string {
	focusColor := styles.CurrentTheme.FocusBrowse
	switch m.Focus {
	case FocusCommand:
		focusColor = styles.CurrentTheme.FocusCommand
	case FocusChat:
		focusColor = styles.CurrentTheme.FocusChat
	}
	focus := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(focusColor).
		Padding(0, 1).
		Render(m.Focus.String())

	modelName := "offline"
	if m.LLM != nil {
		modelName = TruncateRunes(m.CurrentModel.Name, 25)
	}
	model := lipgloss.NewStyle().Foreground(styles.CurrentTheme.Primary).Render(modelName)

	machine := m.Ctl.Machine()
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).
		Render(idleSummary(machine.AutoIdle(), machine.IdleDelay()))

	var tokens string
	if m.LLM != nil {
		usage := m.LLM.Usage()
		tokens = styles.InputTokenStyle.Render(fmt.Sprintf("In:%d", usage.PromptTokens)) + " " +
			styles.OutputTokenStyle.Render(fmt.Sprintf("Out:%d", usage.CompletionTokens))
	}

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, focus, "  ", model, "  ", idle)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, tokens, "  ", help)

	spacer := strings.Repeat(" ", max(m.WindowWidth-lipgloss.Width(leftSide)-lipgloss.Width(rightSide)-2, 0))
	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, spacer, rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(0, 1).
		Render(bar)
}

func GetWelcomeScreen(width, height int) string {
	art := `
   ▄██▄     ▄██▄
  ██████▄▄▄██████
   ▀███▀   ▀███▀
   █  ●     ●  █
   █     ▼     █
    ▀▄▄▄▄▄▄▄▄▄▀
`
	subtitle := "Say hello, or type a command like “wave then sit”."

	styledArt := styles.WelcomeArtStyle.Render(art)
	styledSubtitle := styles.WelcomeSubtitleStyle.Render(subtitle)
	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, "", styledSubtitle)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) UpdateViewport() {
	if len(m.Messages) == 0 && !m.ChatPending {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	content := strings.Join(m.Messages, "\n\n")
	if m.ChatPending {
		loading := fmt.Sprintf("%s\n%s Thinking...", styles.AiLabelStyle.Render("RECEPTION"), m.Spinner.View())
		if content != "" {
			content += "\n\n"
		}
		content += loading
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoBottom()
}

func (m *Model) View() string {
	if m.WindowWidth == 0 {
		return "loading..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.RenderStage(), m.RenderBrowser())
	var body string
	if m.compact() {
		body = lipgloss.JoinVertical(lipgloss.Left, left, m.RenderChat())
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.RenderChat())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("MARIONETTE"),
		body,
		m.RenderNotice(),
		m.RenderInput(),
		m.RenderBottomBar(),
	)

	var modal string
	switch {
	case m.ModelSelectorOpen:
		modal = m.RenderModelSelector()
	case m.ShortcutsOpen:
		modal = m.RenderShortcutsModal()
	default:
		return content
	}
	modal = styles.ModalStyle.Width(ModalWidth).Render(modal)
	return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
}
