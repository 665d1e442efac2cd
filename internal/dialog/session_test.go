package dialog

import (
	"testing"
	"time"
)

func TestSessionsAcquireIsStable(t *testing.T) {
	s := NewSessions(time.Minute)

	first := s.acquire(1)
	second := s.acquire(1)
	if first != second {
		t.Error("expected the same session for repeated acquires")
	}

	other := s.acquire(2)
	if other == first {
		t.Error("expected separate sessions per user")
	}
}

func TestSessionsRemove(t *testing.T) {
	s := NewSessions(time.Minute)

	first := s.acquire(1)
	first.flow = FlowTake
	s.remove(1)

	fresh := s.acquire(1)
	if fresh == first || fresh.flow != FlowNone {
		t.Error("expected a fresh session after removal")
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	s := NewSessions(time.Minute)

	stale := s.acquire(1)
	stale.updatedAt = time.Now().Add(-2 * time.Minute)
	fresh := s.acquire(2)
	fresh.updatedAt = time.Now()

	dropped := s.Sweep(time.Now())
	if dropped != 1 {
		t.Errorf("expected 1 dropped session, got %d", dropped)
	}

	s.mu.Lock()
	_, staleKept := s.byUser[1]
	_, freshKept := s.byUser[2]
	s.mu.Unlock()
	if staleKept {
		t.Error("expected stale session to be swept")
	}
	if !freshKept {
		t.Error("expected fresh session to survive")
	}
}

func TestSweepSkipsBusySessions(t *testing.T) {
	s := NewSessions(time.Minute)

	sess := s.acquire(1)
	sess.updatedAt = time.Now().Add(-time.Hour)

	// A session whose lock is held is mid-event and must not be swept,
	// however stale its last-touch time looks.
	sess.mu.Lock()
	if dropped := s.Sweep(time.Now()); dropped != 0 {
		t.Errorf("expected busy session to survive, dropped %d", dropped)
	}
	sess.mu.Unlock()

	if dropped := s.Sweep(time.Now()); dropped != 1 {
		t.Errorf("expected idle session to be swept once released, dropped %d", dropped)
	}
}

func TestSessionExpired(t *testing.T) {
	sess := &session{flow: FlowTake, updatedAt: time.Now().Add(-time.Hour)}
	if !sess.expired(time.Minute, time.Now()) {
		t.Error("expected stale mid-flow session to be expired")
	}

	// Idle sessions without a flow never count as expired.
	sess = &session{flow: FlowNone, updatedAt: time.Now().Add(-time.Hour)}
	if sess.expired(time.Minute, time.Now()) {
		t.Error("expected flowless session to not expire")
	}
}
