package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionette/internal/anim"
	"marionette/internal/assistant"
	"marionette/internal/chatlog"
	"marionette/internal/intent"
	"marionette/internal/models"
	"marionette/internal/stage"
)

type scriptedGenerator struct {
	replies []string
	err     error
	calls   int
}

func (g *scriptedGenerator) Generate(context.Context, string, string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "none", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

type fixture struct {
	ctl   *Controller
	stage *stage.Stage
	sched *anim.ManualScheduler
	log   *chatlog.Log
	gen   *scriptedGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sched := anim.NewManualScheduler()
	st := stage.New(stage.Builtin(), sched, zerolog.Nop())
	machine := anim.NewMachine(st, sched)
	st.OnFinished(machine.PlaybackFinished)

	log, err := chatlog.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	gen := &scriptedGenerator{}
	ctl := New(machine, intent.NewMatcher(), assistant.New(gen, log), zerolog.Nop())
	ctl.LoadClips(st.ClipNames())
	return &fixture{ctl: ctl, stage: st, sched: sched, log: log, gen: gen}
}

func TestLoadClips(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.ctl.Clips(), 19)
	assert.Contains(t, f.ctl.Categories()[models.CategoryMovement], models.ClipName("CharacterArmature|Run"))
}

func TestSelect_LoopsClip(t *testing.T) {
	f := newFixture(t)
	out := f.ctl.Select("CharacterArmature|Wave")
	assert.Equal(t, SourceDirect, out.Source)

	cur, ok := f.stage.Current()
	require.True(t, ok)
	assert.Equal(t, models.ClipName("CharacterArmature|Wave"), cur.Clip)
	assert.Equal(t, models.LoopRepeat, cur.Mode)
	assert.Equal(t, anim.PhaseSingle, f.ctl.State().Phase)
}

func TestCommand_KeywordSingle(t *testing.T) {
	f := newFixture(t)
	out, fb, err := f.ctl.Command("please run")
	require.NoError(t, err)
	assert.Nil(t, fb)
	assert.Equal(t, SourceKeyword, out.Source)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Run"}, out.Clips)
	assert.Equal(t, anim.PhaseSingle, f.ctl.State().Phase)
	assert.False(t, f.ctl.Busy())
	assert.Equal(t, 0, f.gen.calls)
}

func TestCommand_KeywordSequence(t *testing.T) {
	f := newFixture(t)
	out, fb, err := f.ctl.Command("run then jump")
	require.NoError(t, err)
	assert.Nil(t, fb)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Run", "CharacterArmature|Jump"}, out.Clips)

	st := f.ctl.State()
	assert.Equal(t, anim.PhaseQueue, st.Phase)
	assert.Equal(t, 0, st.Index)
}

func TestCommand_Rejections(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.ctl.Command("   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, fb, err := f.ctl.Command("do a little dance")
	require.NoError(t, err)
	require.NotNil(t, fb)
	assert.True(t, f.ctl.Busy())

	_, _, err = f.ctl.Command("wave")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.ctl.BeginChat("hello")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestCommand_ModelFallbackQueue(t *testing.T) {
	f := newFixture(t)
	f.gen.replies = []string{"Wave, Sitting_Start"}

	_, fb, err := f.ctl.Command("welcome our guest politely")
	require.NoError(t, err)
	require.NotNil(t, fb)

	names, err := fb(context.Background())
	out := f.ctl.ApplyProposals(names, err)

	require.NoError(t, out.Err)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Wave", "CharacterArmature|Sitting_Start"}, out.Clips)
	assert.Equal(t, anim.PhaseQueue, f.ctl.State().Phase)
	assert.False(t, f.ctl.Busy())
}

func TestCommand_ModelFallbackNone(t *testing.T) {
	f := newFixture(t)
	f.ctl.Select("CharacterArmature|Yes")

	_, fb, err := f.ctl.Command("breakdance")
	require.NoError(t, err)
	names, err := fb(context.Background())
	out := f.ctl.ApplyProposals(names, err)

	assert.False(t, out.Applied())
	assert.Equal(t, models.ClipName("CharacterArmature|Yes"), f.ctl.State().Clip)
	assert.False(t, f.ctl.Busy())
}

func TestCommand_ModelFallbackError(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("unauthorized")

	_, fb, err := f.ctl.Command("breakdance")
	require.NoError(t, err)
	names, err := fb(context.Background())
	out := f.ctl.ApplyProposals(names, err)

	assert.Error(t, out.Err)
	assert.False(t, out.Applied())
	assert.False(t, f.ctl.Busy())
	assert.Equal(t, anim.PhaseIdle, f.ctl.State().Phase)
}

func TestChat_AppliesActions(t *testing.T) {
	f := newFixture(t)
	f.gen.replies = []string{`{"message": "Welcome!", "actions": ["Wave"]}`}

	reply, out, err := f.ctl.Chat(context.Background(), "hi, checking in")
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", reply.Message)
	assert.Equal(t, SourceAssistant, out.Source)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Wave"}, out.Clips)
	assert.Equal(t, anim.PhaseSingle, f.ctl.State().Phase)

	msgs, err := f.log.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi, checking in", msgs[0].Text)
	assert.Equal(t, "Welcome!", msgs[1].Text)
}

func TestChat_MultipleActionsQueue(t *testing.T) {
	f := newFixture(t)
	f.gen.replies = []string{`{"message": "Of course.", "actions": ["Yes", "Walk"]}`}

	_, out, err := f.ctl.Chat(context.Background(), "can you show me the pool?")
	require.NoError(t, err)
	assert.Len(t, out.Clips, 2)
	assert.Equal(t, anim.PhaseQueue, f.ctl.State().Phase)
}

func TestChat_MalformedReplyLeavesAvatarAlone(t *testing.T) {
	f := newFixture(t)
	f.ctl.Select("CharacterArmature|Idle")
	f.gen.replies = []string{"I'd be glad to help!"}

	reply, out, err := f.ctl.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.ErrorIs(t, reply.Err, assistant.ErrMalformedReply)
	assert.Equal(t, assistant.FallbackMessage, reply.Message)
	assert.False(t, out.Applied())
	assert.Equal(t, models.ClipName("CharacterArmature|Idle"), f.ctl.State().Clip)
	assert.False(t, f.ctl.Busy())

	n, err := f.log.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestChat_UnknownActionsIgnored(t *testing.T) {
	f := newFixture(t)
	f.gen.replies = []string{`{"message": "Sure.", "actions": ["Moonwalk"]}`}

	_, out, err := f.ctl.Chat(context.Background(), "moonwalk please")
	require.NoError(t, err)
	assert.False(t, out.Applied())
	assert.Equal(t, anim.PhaseIdle, f.ctl.State().Phase)
}

func TestBeginChat_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.BeginChat(" \t")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.False(t, f.ctl.Busy())
}

func TestGreet(t *testing.T) {
	f := newFixture(t)
	f.ctl.Greet(assistant.DefaultGreeting)
	f.ctl.Greet("")

	msgs, err := f.log.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Author)
	assert.Equal(t, assistant.DefaultGreeting, msgs[0].Text)
}

func TestStopQueue(t *testing.T) {
	f := newFixture(t)
	f.ctl.Select("CharacterArmature|Wave")
	f.ctl.StopQueue()
	assert.Equal(t, anim.PhaseSingle, f.ctl.State().Phase, "no queue to stop")

	_, _, err := f.ctl.Command("walk then run")
	require.NoError(t, err)
	f.ctl.StopQueue()
	assert.Equal(t, anim.PhaseIdle, f.ctl.State().Phase)
	_, ok := f.stage.Current()
	assert.False(t, ok)
}

func TestStopAll_DoesNotArmIdle(t *testing.T) {
	f := newFixture(t)
	f.ctl.Select("CharacterArmature|Run")
	f.ctl.StopAll()
	assert.False(t, f.ctl.Machine().TimerPending())

	f.sched.Advance(time.Minute)
	_, ok := f.stage.Current()
	assert.False(t, ok)
}

func TestQueueReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.ctl.Machine().SetIdleDelay(time.Second)

	_, _, err := f.ctl.Command("jump then wave")
	require.NoError(t, err)

	f.sched.Advance(f.stage.Duration("CharacterArmature|Jump"))
	f.sched.Advance(f.stage.Duration("CharacterArmature|Wave"))
	st := f.ctl.State()
	assert.Equal(t, anim.PhaseIdle, st.Phase)
	assert.Equal(t, models.ClipName("CharacterArmature|Wave"), st.Clip)

	f.sched.Advance(time.Second)
	cur, ok := f.stage.Current()
	require.True(t, ok)
	assert.Equal(t, models.ClipName("CharacterArmature|Idle"), cur.Clip)
}
