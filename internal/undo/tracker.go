package undo

import (
	"time"

	"github.com/jmylchreest/clipbox/internal/model"
)

// DefaultWindow is how long the undo affordance stays visible after a delete.
const DefaultWindow = 5 * time.Second

// State describes whether an undo can be offered.
type State int

const (
	// StateIdle means nothing has been deleted.
	StateIdle State = iota
	// StateAvailable means the last delete is inside the visibility window.
	StateAvailable
	// StateExpired means entries remain but the window has closed.
	StateExpired
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateExpired:
		return "expired"
	default:
		return "idle"
	}
}

// Config controls a Tracker.
type Config struct {
	Capacity int
	Window   time.Duration
	// AllowAfterExpiry lets Pop succeed once the window has closed.
	AllowAfterExpiry bool
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		Capacity: DefaultCapacity,
		Window:   DefaultWindow,
	}
}

// Tracker pairs a Ring with a visibility deadline. Every Push restarts the
// window; expiry hides the affordance but never clears the ring.
type Tracker struct {
	ring     *Ring
	window   time.Duration
	allow    bool
	deadline time.Time
}

// NewTracker creates a tracker from cfg.
func NewTracker(cfg Config) *Tracker {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Tracker{
		ring:   NewRing(cfg.Capacity),
		window: cfg.Window,
		allow:  cfg.AllowAfterExpiry,
	}
}

// Push records a deletion and restarts the visibility window at now.
func (t *Tracker) Push(sn model.Snippet, now time.Time) {
	t.ring.Push(sn)
	t.deadline = now.Add(t.window)
}

// State reports the undo state at now.
func (t *Tracker) State(now time.Time) State {
	if t.ring.Len() == 0 {
		return StateIdle
	}
	if now.Before(t.deadline) {
		return StateAvailable
	}
	return StateExpired
}

// Pop removes the most recent deletion if the state at now permits it.
func (t *Tracker) Pop(now time.Time) (model.Snippet, bool) {
	switch t.State(now) {
	case StateAvailable:
	case StateExpired:
		if !t.allow {
			return model.Snippet{}, false
		}
	default:
		return model.Snippet{}, false
	}
	return t.ring.Pop()
}

// Requeue puts a popped snippet back without touching the window.
// Used when restoring it failed.
func (t *Tracker) Requeue(sn model.Snippet) {
	t.ring.Push(sn)
}

// Deadline returns when the current window closes.
func (t *Tracker) Deadline() time.Time {
	return t.deadline
}

// Window returns the visibility window length.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Len returns the number of remembered deletions.
func (t *Tracker) Len() int {
	return t.ring.Len()
}

// Peek returns the deletion the next Pop would restore.
func (t *Tracker) Peek() (model.Snippet, bool) {
	return t.ring.Peek()
}
