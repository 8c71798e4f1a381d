// Package anim sequences avatar clips and returns the avatar to idle after
// inactivity.
//
// A Machine is not safe for concurrent use. All methods, and every callback
// delivered through its Scheduler, must run on one goroutine.
package anim

import (
	"time"

	"github.com/rs/zerolog"

	"marionette/internal/catalog"
	"marionette/internal/models"
)

const (
	DefaultIdleDelay = 3 * time.Second
	MinIdleDelay     = 1 * time.Second
	MaxIdleDelay     = 10 * time.Second
)

// Phase is the coarse state of the machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSingle
	PhaseQueue
)

func (p Phase) String() string {
	switch p {
	case PhaseSingle:
		return "single"
	case PhaseQueue:
		return "queue"
	default:
		return "idle"
	}
}

// State is a snapshot of the machine.
type State struct {
	Phase Phase
	// Clip is the clip being played. In PhaseIdle it is the last clip of a
	// completed queue, which stays clamped on its final frame, or empty.
	Clip  models.ClipName
	Queue []models.ClipName
	Index int
}

// Mode is the loop mode the current clip was started with.
func (s State) Mode() models.LoopMode {
	if s.Phase == PhaseQueue {
		return models.LoopOnce
	}
	return models.LoopRepeat
}

// Player is the playback side of the model provider.
type Player interface {
	Play(clip models.ClipName, mode models.LoopMode)
	Stop(clip models.ClipName)
}

// Observer is notified after every transition.
type Observer func(from, to State)

type Machine struct {
	player Player
	sched  Scheduler
	log    zerolog.Logger

	clips     []models.ClipName
	autoIdle  bool
	idleDelay time.Duration

	state State

	timer    Timer
	timerGen uint64

	observer Observer
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(l zerolog.Logger) Option { return func(m *Machine) { m.log = l } }

func WithObserver(o Observer) Option { return func(m *Machine) { m.observer = o } }

func WithAutoIdle(enabled bool) Option { return func(m *Machine) { m.autoIdle = enabled } }

func WithIdleDelay(d time.Duration) Option {
	return func(m *Machine) { m.idleDelay = ClampIdleDelay(d) }
}

func NewMachine(player Player, sched Scheduler, opts ...Option) *Machine {
	m := &Machine{
		player:    player,
		sched:     sched,
		log:       zerolog.Nop(),
		autoIdle:  true,
		idleDelay: DefaultIdleDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClampIdleDelay keeps d within the 1-10 second range the controls allow.
func ClampIdleDelay(d time.Duration) time.Duration {
	if d < MinIdleDelay {
		return MinIdleDelay
	}
	if d > MaxIdleDelay {
		return MaxIdleDelay
	}
	return d
}

// SetClips replaces the catalog snapshot used to find the idle clip.
func (m *Machine) SetClips(clips []models.ClipName) {
	m.clips = append([]models.ClipName(nil), clips...)
}

// SetAutoIdle toggles the return-to-idle feature. Disabling it cancels a
// pending timer.
func (m *Machine) SetAutoIdle(enabled bool) {
	m.autoIdle = enabled
	if !enabled {
		m.cancelTimer()
	}
}

func (m *Machine) AutoIdle() bool { return m.autoIdle }

// SetIdleDelay changes the delay used by future arming calls.
func (m *Machine) SetIdleDelay(d time.Duration) {
	m.idleDelay = ClampIdleDelay(d)
}

func (m *Machine) IdleDelay() time.Duration { return m.idleDelay }

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.Queue = append([]models.ClipName(nil), m.state.Queue...)
	return s
}

// TimerPending reports whether an idle timer is armed.
func (m *Machine) TimerPending() bool { return m.timer != nil }

// PlaySingle loops clip until something else is requested.
func (m *Machine) PlaySingle(clip models.ClipName) {
	m.cancelTimer()
	m.transition(State{Phase: PhaseSingle, Clip: clip})
	m.player.Play(clip, models.LoopRepeat)
}

// PlayQueue plays clips back to back, each once. An empty queue is ignored.
func (m *Machine) PlayQueue(clips []models.ClipName) {
	if len(clips) == 0 {
		return
	}
	m.cancelTimer()
	queue := append([]models.ClipName(nil), clips...)
	m.transition(State{Phase: PhaseQueue, Clip: queue[0], Queue: queue, Index: 0})
	m.player.Play(queue[0], models.LoopOnce)
}

// PlaybackFinished is called by the presentation layer when a play-once clip
// completes.
func (m *Machine) PlaybackFinished() {
	switch m.state.Phase {
	case PhaseQueue:
		next := m.state.Index + 1
		if next < len(m.state.Queue) {
			clip := m.state.Queue[next]
			m.transition(State{Phase: PhaseQueue, Clip: clip, Queue: m.state.Queue, Index: next})
			m.player.Play(clip, models.LoopOnce)
			return
		}
		m.log.Debug().Int("length", len(m.state.Queue)).Msg("queue finished")
		m.transition(State{Phase: PhaseIdle, Clip: m.state.Clip})
		m.ArmIdleTimer(m.idleDelay)
	case PhaseSingle:
		m.log.Debug().Str("clip", string(m.state.Clip)).Msg("single clip finished")
		m.ArmIdleTimer(m.idleDelay)
	default:
		m.log.Debug().Msg("finished notification while idle, ignoring")
	}
}

// Stop halts playback and clears any queue. It never arms the idle timer.
func (m *Machine) Stop() {
	m.cancelTimer()
	if m.state.Clip != "" {
		m.player.Stop(m.state.Clip)
	}
	m.transition(State{Phase: PhaseIdle})
}

// ArmIdleTimer schedules a return to the idle clip after delay, replacing any
// pending timer. It does nothing when the feature is off or no idle clip exists.
func (m *Machine) ArmIdleTimer(delay time.Duration) {
	if !m.autoIdle {
		return
	}
	idle, ok := catalog.FindIdle(m.clips)
	if !ok {
		m.log.Debug().Msg("no idle clip in catalog, timer not armed")
		return
	}
	m.cancelTimer()

	m.timerGen++
	gen := m.timerGen
	m.log.Debug().Dur("delay", delay).Str("clip", string(idle)).Msg("idle timer armed")
	m.timer = m.sched.AfterFunc(delay, func() { m.fireIdle(gen, idle) })
}

func (m *Machine) fireIdle(gen uint64, idle models.ClipName) {
	// A timer stopped after its callback was already queued still lands here.
	if gen != m.timerGen || m.timer == nil {
		return
	}
	m.timer = nil
	m.log.Debug().Str("clip", string(idle)).Msg("returning to idle")
	m.transition(State{Phase: PhaseSingle, Clip: idle})
	m.player.Play(idle, models.LoopRepeat)
}

func (m *Machine) cancelTimer() {
	if m.timer == nil {
		return
	}
	m.timer.Stop()
	m.timer = nil
	m.timerGen++
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	if m.observer != nil {
		m.observer(from, m.State())
	}
}
