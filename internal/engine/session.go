package engine

import (
	"sync"
	"time"

	"dexsimplify/internal/enginerr"
	"dexsimplify/internal/engine/state"
)

// Session is the cancellation object shared across every graph build
// (top-level, <clinit> and invoke-triggered) that uses it; the launcher
// creates one per analyzed class. It holds a wall-clock
// deadline checked per dequeue, and a global method-visit counter checked
// per invoke. maxAddressVisits and maxCallDepth are checked per-build and
// per-call respectively, against the same state.ResourceBounds, but don't
// need cross-build shared counters the way time and total method visits do.
type Session struct {
	Bounds state.ResourceBounds

	deadline time.Time

	mu           sync.Mutex
	methodVisits int
}

func NewSession(bounds state.ResourceBounds) *Session {
	return &Session{Bounds: bounds, deadline: time.Now().Add(bounds.MaxExecutionTime)}
}

// CheckTime returns a ResourceBoundExceeded error once the session's
// maxExecutionTime budget has elapsed; the driver checks this at every
// work-list dequeue so a pathological method can't stall a run indefinitely.
func (s *Session) CheckTime() error {
	if time.Now().After(s.deadline) {
		return enginerr.NewResourceBound("", "maxExecutionTime", "execution time budget exceeded")
	}
	return nil
}

// IncrMethodVisit records one more method entered (top-level or recursive)
// and reports whether the session is still within maxMethodVisits.
func (s *Session) IncrMethodVisit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methodVisits++
	return s.methodVisits <= s.Bounds.MaxMethodVisits
}
