package quiz

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryCreateReplacesAndStopsOld(t *testing.T) {
	r := NewRegistry()

	old := r.Create(1, makeQuestions(2), 100)

	var oldExpired int32
	old.SetTimer(StartCountdown(50*time.Millisecond, 5*time.Millisecond, CountdownHooks{
		OnExpire: func() {
			atomic.AddInt32(&oldExpired, 1)
		},
	}))

	replacement := r.Create(1, makeQuestions(2), 200)

	got, ok := r.Get(1)
	if !ok || got != replacement {
		t.Fatal("Get() did not return the replacement session")
	}
	if old.State() != StateStopped {
		t.Errorf("old session state = %q, want %q", old.State(), StateStopped)
	}

	// The old session's timer must never expire against the new game.
	time.Sleep(80 * time.Millisecond)
	if n := atomic.LoadInt32(&oldExpired); n != 0 {
		t.Errorf("old timer expired %d times after replacement, want 0", n)
	}
}

func TestRegistryTerminate(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1, makeQuestions(1), 100)

	got, ok := r.Terminate(1)
	if !ok || got != s {
		t.Fatal("Terminate() did not return the session")
	}
	if s.State() != StateStopped {
		t.Errorf("state = %q, want %q", s.State(), StateStopped)
	}
	if _, ok := r.Get(1); ok {
		t.Error("session still registered after Terminate")
	}
	if _, ok := r.Terminate(1); ok {
		t.Error("second Terminate reported a session")
	}
}

func TestRegistryHasLive(t *testing.T) {
	r := NewRegistry()

	if r.HasLive(1) {
		t.Error("HasLive() on empty registry")
	}

	s := r.Create(1, makeQuestions(1), 100)
	if !r.HasLive(1) {
		t.Error("HasLive() = false for a registering session")
	}

	s.AddParticipant(1, "", "A")
	s.StartQuestion()
	s.EndQuestion()
	s.Advance()

	// Finished sessions stay registered for explanation browsing but no
	// longer count as live.
	if r.HasLive(1) {
		t.Error("HasLive() = true for a finished session")
	}
	if _, ok := r.Get(1); !ok {
		t.Error("finished session was dropped from the registry")
	}
}

func TestRegistryIsolatesChats(t *testing.T) {
	r := NewRegistry()
	a := r.Create(1, makeQuestions(1), 100)
	b := r.Create(2, makeQuestions(1), 100)

	r.Terminate(1)

	if b.State() == StateStopped {
		t.Error("terminating chat 1 stopped chat 2's session")
	}
	if a.State() != StateStopped {
		t.Error("chat 1's session was not stopped")
	}
}
