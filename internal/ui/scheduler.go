package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marionette/internal/anim"
)

// Scheduler delivers timer callbacks through the tea.Program so that they run
// on the Update goroutine alongside key handling.
type Scheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// Attach connects the scheduler to a running program. Callbacks that fire
// before Attach are dropped.
func (s *Scheduler) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = p.Send
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) anim.Timer {
	return time.AfterFunc(d, func() {
		s.mu.Lock()
		send := s.send
		s.mu.Unlock()
		if send != nil {
			send(scheduledMsg{fn: f})
		}
	})
}
