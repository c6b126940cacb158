package quiz

import (
	"testing"
	"time"
)

func TestStatusBoard_MessageAutoClears(t *testing.T) {
	b := NewStatusBoard(20 * time.Millisecond)

	b.Notice("approval pending")
	if got := b.Message(); got != "approval pending" {
		t.Fatalf("Message = %q, want the posted notice", got)
	}

	deadline := time.After(time.Second)
	for b.Message() != "" {
		select {
		case <-deadline:
			t.Fatal("message never cleared")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStatusBoard_NewerMessageSurvivesOldClear(t *testing.T) {
	b := NewStatusBoard(30 * time.Millisecond)

	b.Notice("first")
	time.Sleep(15 * time.Millisecond)
	b.Notice("second")

	// The first message's clear timer fires here; "second" must survive it.
	time.Sleep(20 * time.Millisecond)
	if got := b.Message(); got != "second" {
		t.Errorf("Message = %q, want %q", got, "second")
	}
}

func TestStatusBoard_PhaseTracking(t *testing.T) {
	b := NewStatusBoard(time.Second)
	if b.Phase() != PhaseIdle {
		t.Errorf("initial phase = %q, want idle", b.Phase())
	}
	b.PhaseChanged(PhaseSubmitting)
	if b.Phase() != PhaseSubmitting {
		t.Errorf("phase = %q, want submitting", b.Phase())
	}
}
