package game

import (
	"sync"
	"time"
)

// timerSet centralizes timer ownership by roomId, independent of Room's
// own data so room-state snapshots stay pure data. Cancellation always
// happens before any state mutation that would invalidate a pending
// timer.
type timerSet struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newTimerSet() *timerSet {
	return &timerSet{timers: make(map[string]*time.Timer)}
}

// schedule arms a one-shot timer for roomID, replacing any existing one.
func (t *timerSet) schedule(roomID string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.timers[roomID]; ok {
		old.Stop()
	}
	t.timers[roomID] = time.AfterFunc(d, fn)
}

// cancel stops and forgets roomID's timer, if any. Safe to call when no
// timer is registered.
func (t *timerSet) cancel(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tm, ok := t.timers[roomID]; ok {
		tm.Stop()
		delete(t.timers, roomID)
	}
}
