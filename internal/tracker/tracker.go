package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// Mode is the polling mode
type Mode string

const (
	ModeActive   Mode = "active"
	ModeInactive Mode = "inactive"
)

// ModeTransition records a change of polling mode
type ModeTransition struct {
	From Mode `json:"from"`
	To   Mode `json:"to"`
}

// Message is the operational notice for the transition
func (t ModeTransition) Message() string {
	if t.To == ModeActive {
		return "At least one game is active, enabling active mode."
	}
	return "All games are inactive, disabling active mode."
}

// ApplyResult is the outcome of publishing a new snapshot
type ApplyResult struct {
	DiffResult
	Transition *ModeTransition
}

// Tracker owns the published snapshot and the polling mode.
// Readers load the snapshot without locking; writers are serialised.
type Tracker struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[models.Snapshot]
	mode     atomic.Value // Mode
	lastPoll time.Time
}

// New creates a tracker with an empty snapshot in active mode
func New() *Tracker {
	t := &Tracker{}
	t.snapshot.Store(models.EmptySnapshot())
	t.mode.Store(ModeActive)
	return t
}

// Snapshot returns the last published snapshot
func (t *Tracker) Snapshot() *models.Snapshot {
	return t.snapshot.Load()
}

// Mode returns the current polling mode
func (t *Tracker) Mode() Mode {
	return t.mode.Load().(Mode)
}

// LastPoll returns when the last poll was attempted
func (t *Tracker) LastPoll() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPoll
}

// ShouldPoll reports whether a tick should fetch. Active mode always
// polls; inactive mode waits inactiveInterval since the last attempt.
func (t *Tracker) ShouldPoll(now time.Time, inactiveInterval time.Duration) bool {
	if t.Mode() == ModeActive {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPoll.IsZero() || now.Sub(t.lastPoll) >= inactiveInterval
}

// MarkPolled stamps a poll attempt, successful or not
func (t *Tracker) MarkPolled(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastPoll = now
}

// Apply diffs next against the published snapshot, publishes next and
// updates the mode
func (t *Tracker) Apply(next *models.Snapshot, now time.Time) ApplyResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.snapshot.Load()
	result := ApplyResult{DiffResult: Diff(prev, next, now)}
	t.snapshot.Store(next)

	current := t.Mode()
	want := ModeInactive
	if next.AnyInProgress() {
		want = ModeActive
	}
	if want != current {
		t.mode.Store(want)
		result.Transition = &ModeTransition{From: current, To: want}
	}

	return result
}
