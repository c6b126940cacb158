package quiz

import (
	"sync"
	"time"
)

// Notifier receives UI-visible progress from the orchestrator.
type Notifier interface {
	PhaseChanged(phase Phase)
	Notice(message string)
}

// StatusBoard is the single channel all externally visible messages funnel
// through. A message clears itself after the configured delay; reads always
// see either the latest message or nothing.
type StatusBoard struct {
	mu         sync.Mutex
	phase      Phase
	message    string
	seq        int
	clearDelay time.Duration
}

// NewStatusBoard creates a board whose messages auto-clear after clearDelay.
func NewStatusBoard(clearDelay time.Duration) *StatusBoard {
	if clearDelay <= 0 {
		clearDelay = 5 * time.Second
	}
	return &StatusBoard{phase: PhaseIdle, clearDelay: clearDelay}
}

// PhaseChanged records the current orchestration phase.
func (b *StatusBoard) PhaseChanged(phase Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = phase
}

// Notice sets the visible message and schedules its clearing. A newer
// message cancels the pending clear of an older one.
func (b *StatusBoard) Notice(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.message = message
	b.seq++
	seq := b.seq

	time.AfterFunc(b.clearDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.seq == seq {
			b.message = ""
		}
	})
}

// Phase returns the current phase.
func (b *StatusBoard) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Message returns the current message, or empty once cleared.
func (b *StatusBoard) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}
