package anim

import (
	"sort"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler runs f after d. Implementations must invoke f on the same
// goroutine that drives the Machine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ManualScheduler is a Scheduler driven by an explicit clock. It is used by
// tests and headless commands that need deterministic timing.
type ManualScheduler struct {
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.seq++
	t := &manualTimer{s: s, due: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	return len(s.pending)
}

// NextDue returns the delay until the earliest pending callback.
func (s *ManualScheduler) NextDue() (time.Duration, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	s.sortPending()
	return s.pending[0].due - s.now, true
}

// Advance moves the clock forward by d, running every callback that becomes
// due in deadline order. Callbacks may schedule further callbacks.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		s.sortPending()
		if len(s.pending) == 0 || s.pending[0].due > target {
			break
		}
		t := s.pending[0]
		s.pending = s.pending[1:]
		s.now = t.due
		t.fired = true
		t.f()
	}
	s.now = target
}

func (s *ManualScheduler) sortPending() {
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due == s.pending[j].due {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].due < s.pending[j].due
	})
}

func (s *ManualScheduler) remove(t *manualTimer) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}
