package dialog

import (
	"context"
	"sync"
	"time"
)

// Flows.
const (
	FlowNone          = ""
	FlowTake          = "take"
	FlowReturn        = "return"
	FlowAdminCategory = "admin_category"
	FlowAdminItem     = "admin_item"
	FlowAdminUser     = "admin_user"
	FlowAdminSearch   = "admin_search"
)

// Steps within flows. Not every flow uses every step.
const (
	stepAwaitAction = iota
	stepAwaitCategory
	stepAwaitItem
	stepAwaitUser
	stepAwaitPhoto
	stepAwaitNote
	stepAwaitName
	stepAwaitQuery
	stepConfirm
)

// session is one user's place in a multi-turn dialog. Nothing in it is
// persisted; an interrupted flow is simply abandoned.
type session struct {
	// mu serializes all event handling for this user.
	mu sync.Mutex

	userID     int64
	flow       string
	step       int
	action     string
	categoryID int64
	itemID     int64
	targetID   int64
	photoID    string
	note       string
	updatedAt  time.Time
}

// reset drops any in-progress flow. No side effects: flows mutate nothing
// before their terminal step.
func (s *session) reset() {
	s.flow = FlowNone
	s.step = 0
	s.action = ""
	s.categoryID = 0
	s.itemID = 0
	s.targetID = 0
	s.photoID = ""
	s.note = ""
}

// expired reports whether the session has been idle beyond the TTL.
func (s *session) expired(ttl time.Duration, now time.Time) bool {
	return s.flow != FlowNone && now.Sub(s.updatedAt) > ttl
}

// Sessions holds per-user dialog state, arena-style: entries are explicitly
// removed on completion, cancellation, or idle timeout rather than left for
// the garbage collector to find.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	byUser map[int64]*session
}

// NewSessions creates a session store with the given idle TTL.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:    ttl,
		byUser: map[int64]*session{},
	}
}

// acquire returns the user's session, creating one if needed. The caller must
// lock the returned session before using it; the store lock is not held
// across event handling so different users proceed in parallel.
func (s *Sessions) acquire(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[userID]
	if !ok {
		sess = &session{userID: userID, updatedAt: time.Now()}
		s.byUser[userID] = sess
	}
	return sess
}

// remove drops a user's session entry entirely.
func (s *Sessions) remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}

// Sweep removes sessions idle beyond the TTL and returns how many were
// dropped. A swept mid-flow session is indistinguishable from a cancelled
// one. updatedAt is owned by the session mutex, so each session is locked
// before the idle check; a session whose lock is busy is mid-event and by
// definition not idle. TryLock avoids the lock inversion with event handling,
// which takes the store lock while holding the session lock.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for id, sess := range s.byUser {
		if !sess.mu.TryLock() {
			continue
		}
		idle := now.Sub(sess.updatedAt) > s.ttl
		sess.mu.Unlock()

		if idle {
			delete(s.byUser, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper periodically sweeps idle sessions until the context is
// cancelled.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
