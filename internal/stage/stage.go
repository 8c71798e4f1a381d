// Package stage is the model provider: it exposes the clips authored in a
// glTF asset and simulates their playback on a virtual timeline.
package stage

import (
	"fmt"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"

	"marionette/internal/anim"
	"marionette/internal/models"
)

// FallbackDuration is used when a clip has no usable authored duration.
const FallbackDuration = 2 * time.Second

// Clip is one authored animation.
type Clip struct {
	Name     models.ClipName
	Duration time.Duration
}

// Playing describes what the stage is currently showing.
type Playing struct {
	Clip    models.ClipName
	Mode    models.LoopMode
	Started time.Time
	// Clamped is set once a play-once clip reached its last frame.
	Clamped bool
}

// Stage plays clips and reports when play-once clips complete. Like the
// state machine it drives, it is confined to the event loop goroutine.
type Stage struct {
	clips     []Clip
	durations map[models.ClipName]time.Duration

	sched    anim.Scheduler
	now      func() time.Time
	log      zerolog.Logger
	finished func()

	current  Playing
	active   bool
	timer    anim.Timer
	timerGen uint64
}

// New builds a stage over an explicit clip list.
func New(clips []Clip, sched anim.Scheduler, log zerolog.Logger) *Stage {
	s := &Stage{
		clips:     clips,
		durations: make(map[models.ClipName]time.Duration, len(clips)),
		sched:     sched,
		now:       time.Now,
		log:       log,
	}
	for _, c := range clips {
		s.durations[c.Name] = c.Duration
	}
	return s
}

// Open loads the clips of a .gltf or .glb file.
func Open(path string) ([]Clip, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	clips, err := ClipsFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clips, nil
}

// ClipsFromDocument lists the document's animations. A clip's duration is the
// largest keyframe time across its samplers, read from the input accessors'
// max bound.
func ClipsFromDocument(doc *gltf.Document) ([]Clip, error) {
	if len(doc.Animations) == 0 {
		return nil, fmt.Errorf("no animations in file")
	}
	clips := make([]Clip, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("Animation_%d", i)
		}
		var maxT float64
		for _, s := range a.Samplers {
			if int(s.Input) >= len(doc.Accessors) {
				return nil, fmt.Errorf("animation %q: sampler input %d out of range", name, s.Input)
			}
			acc := doc.Accessors[s.Input]
			if len(acc.Max) > 0 && acc.Max[0] > maxT {
				maxT = acc.Max[0]
			}
		}
		clips = append(clips, Clip{
			Name:     models.ClipName(name),
			Duration: time.Duration(maxT * float64(time.Second)),
		})
	}
	return clips, nil
}

// OnFinished registers the callback raised when a play-once clip completes.
func (s *Stage) OnFinished(f func()) { s.finished = f }

// SetClock overrides the wall clock used for progress reporting.
func (s *Stage) SetClock(now func() time.Time) { s.now = now }

// ClipNames lists clip identifiers in authored order.
func (s *Stage) ClipNames() []models.ClipName {
	names := make([]models.ClipName, len(s.clips))
	for i, c := range s.clips {
		names[i] = c.Name
	}
	return names
}

// Duration is the authored length of clip, or FallbackDuration when unknown.
func (s *Stage) Duration(clip models.ClipName) time.Duration {
	if d, ok := s.durations[clip]; ok && d > 0 {
		return d
	}
	return FallbackDuration
}

// Play starts clip. Any previous clip is replaced and its pending finished
// notification dropped.
func (s *Stage) Play(clip models.ClipName, mode models.LoopMode) {
	s.cancelFinish()
	if _, ok := s.durations[clip]; !ok {
		s.log.Warn().Str("clip", string(clip)).Msg("unknown clip, playing with fallback duration")
	}
	s.current = Playing{Clip: clip, Mode: mode, Started: s.now()}
	s.active = true

	if mode != models.LoopOnce {
		return
	}
	d := s.Duration(clip)
	s.timerGen++
	gen := s.timerGen
	s.log.Debug().Str("clip", string(clip)).Dur("duration", d).Msg("play once")
	s.timer = s.sched.AfterFunc(d, func() { s.complete(gen) })
}

// Stop halts clip if it is the one playing.
func (s *Stage) Stop(clip models.ClipName) {
	if !s.active || s.current.Clip != clip {
		return
	}
	s.cancelFinish()
	s.current = Playing{}
	s.active = false
}

// Current returns the playing clip, if any.
func (s *Stage) Current() (Playing, bool) {
	return s.current, s.active
}

// Progress is the fraction of the current cycle that has elapsed, in [0, 1].
func (s *Stage) Progress() float64 {
	if !s.active {
		return 0
	}
	if s.current.Clamped {
		return 1
	}
	d := s.Duration(s.current.Clip)
	elapsed := s.now().Sub(s.current.Started)
	if s.current.Mode == models.LoopRepeat {
		elapsed %= d
	} else if elapsed > d {
		return 1
	}
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed) / float64(d)
}

func (s *Stage) complete(gen uint64) {
	if gen != s.timerGen || s.timer == nil {
		return
	}
	s.timer = nil
	s.current.Clamped = true
	s.log.Debug().Str("clip", string(s.current.Clip)).Msg("play once finished")
	if s.finished != nil {
		s.finished()
	}
}

func (s *Stage) cancelFinish() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.timerGen++
}
