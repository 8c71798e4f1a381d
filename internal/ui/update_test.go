package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionette/internal/anim"
	"marionette/internal/assistant"
	"marionette/internal/chatlog"
	"marionette/internal/controller"
	"marionette/internal/intent"
	"marionette/internal/llm"
	"marionette/internal/models"
	"marionette/internal/stage"
)

func newTestModel(t *testing.T) (*Model, *anim.ManualScheduler) {
	t.Helper()
	sched := anim.NewManualScheduler()
	st := stage.New(stage.Builtin(), sched, zerolog.Nop())
	machine := anim.NewMachine(st, sched)

	log, err := chatlog.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	asst := assistant.New(llm.Offline{Err: llm.ErrNoAPIKey}, log)
	ctl := controller.New(machine, intent.NewMatcher(), asst, zerolog.Nop())
	st.OnFinished(ctl.PlaybackFinished)
	ctl.LoadClips(st.ClipNames())

	m := New(Options{Controller: ctl, Stage: st, Transcript: log, Logger: zerolog.Nop()})
	t.Cleanup(m.cancel)
	return m, sched
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestUpdate_TabCyclesFocus(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, FocusBrowse, m.Focus)
	press(m, tea.KeyTab)
	assert.Equal(t, FocusCommand, m.Focus)
	press(m, tea.KeyTab)
	assert.Equal(t, FocusChat, m.Focus)
	press(m, tea.KeyShiftTab)
	assert.Equal(t, FocusCommand, m.Focus)
	press(m, tea.KeyEsc)
	assert.Equal(t, FocusBrowse, m.Focus)
}

func TestUpdate_BrowseSelectsClip(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyDown)
	assert.Equal(t, 1, m.ClipCursor)
	press(m, tea.KeyEnter)

	st := m.Ctl.State()
	assert.Equal(t, anim.PhaseSingle, st.Phase)
	assert.Equal(t, m.filteredClips()[1], st.Clip)
	assert.Contains(t, m.Notice, "playing (direct)")
}

func TestUpdate_SearchResetsCursor(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyDown)
	typeText(m, "sit")
	assert.Equal(t, 0, m.ClipCursor)
	for _, clip := range m.filteredClips() {
		assert.Contains(t, string(clip), "Sit")
	}
}

func TestUpdate_CommandKeywordQueue(t *testing.T) {
	m, sched := newTestModel(t)
	press(m, tea.KeyTab)
	typeText(m, "run then jump")
	cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)

	st := m.Ctl.State()
	require.Equal(t, anim.PhaseQueue, st.Phase)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Run", "CharacterArmature|Jump"}, st.Queue)
	assert.Equal(t, "1/2", QueueProgress(st))
	assert.Empty(t, m.CommandInput.Value())

	press(m, tea.KeyCtrlQ)
	assert.Equal(t, anim.PhaseIdle, m.Ctl.State().Phase)
	assert.Zero(t, sched.Pending())
}

func TestUpdate_CommandFallbackOffline(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	typeText(m, "do something unusual")
	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.Loading)
	assert.True(t, m.Ctl.Busy())

	m.Update(suggestionMsg{err: llm.ErrNoAPIKey})
	assert.False(t, m.Loading)
	assert.False(t, m.Ctl.Busy())
	assert.True(t, m.NoticeIsErr)
	assert.Contains(t, m.Notice, "no API key")
}

func TestUpdate_ChatReplyRecordsActions(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	press(m, tea.KeyTab)
	typeText(m, "hello there")
	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.ChatPending)

	m.Update(chatReplyMsg{reply: assistant.Reply{Message: "Welcome in!", Actions: []string{"Wave"}}})
	assert.False(t, m.ChatPending)
	assert.False(t, m.Ctl.Busy())
	assert.Equal(t, models.ClipName("CharacterArmature|Wave"), m.Ctl.State().Clip)

	id := m.lastAssistantID()
	require.NotEmpty(t, id)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Wave"}, m.ReplyActions[id])
	assert.Len(t, m.Messages, 2)
}

func TestUpdate_RejectsWhileBusy(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	typeText(m, "do something unusual")
	press(m, tea.KeyEnter)

	typeText(m, "another odd request")
	assert.Nil(t, press(m, tea.KeyEnter))
	assert.Equal(t, "still waiting for the last request", m.Notice)
	assert.Equal(t, "another odd request", m.CommandInput.Value())
}

func TestUpdate_IdleControls(t *testing.T) {
	m, _ := newTestModel(t)
	machine := m.Ctl.Machine()
	require.True(t, machine.AutoIdle())

	press(m, tea.KeyCtrlT)
	assert.False(t, machine.AutoIdle())
	assert.Equal(t, "auto-idle off", m.Notice)

	delay := machine.IdleDelay()
	press(m, tea.KeyCtrlUp)
	assert.Equal(t, StepIdleDelay(delay, 1), machine.IdleDelay())
	for i := 0; i < 20; i++ {
		press(m, tea.KeyCtrlDown)
	}
	assert.Equal(t, time.Second, machine.IdleDelay())
}

func TestUpdate_ScheduledMsgRunsCallback(t *testing.T) {
	m, _ := newTestModel(t)
	ran := false
	m.Update(scheduledMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestView_Renders(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	out := m.View()
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "Wave")

	press(m, tea.KeyCtrlS)
	assert.True(t, m.ShortcutsOpen)
	press(m, tea.KeyEsc)
	assert.False(t, m.ShortcutsOpen)
}

func TestRenderInput_FollowsMode(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})

	assert.Contains(t, m.RenderInput(), "walk then jump")
	press(m, tea.KeyTab)
	assert.Contains(t, m.RenderInput(), "walk then jump")
	press(m, tea.KeyTab)
	assert.Contains(t, m.RenderInput(), "receptionist")
}

func TestUpdate_ChatNewlineShortcut(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	press(m, tea.KeyTab)
	typeText(m, "line one")
	assert.Nil(t, press(m, tea.KeyCtrlJ))
	typeText(m, "line two")
	assert.Equal(t, "line one\nline two", m.ChatInput.Value())
	assert.False(t, m.Ctl.Busy())
}
