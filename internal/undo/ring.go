// Package undo keeps recently deleted snippets so a delete can be reverted.
package undo

import "github.com/jmylchreest/clipbox/internal/model"

// DefaultCapacity is the number of deletions remembered.
const DefaultCapacity = 5

// Ring is a bounded LIFO of deleted snippets. Once full, pushing evicts the
// oldest entry. Not safe for concurrent use.
type Ring struct {
	entries  []model.Snippet
	capacity int
}

// NewRing creates a ring holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		entries:  make([]model.Snippet, 0, capacity),
		capacity: capacity,
	}
}

// Push records a deleted snippet, evicting the oldest entry when full.
func (r *Ring) Push(sn model.Snippet) {
	if len(r.entries) == r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, sn)
}

// Pop removes and returns the most recently pushed snippet.
func (r *Ring) Pop() (model.Snippet, bool) {
	if len(r.entries) == 0 {
		return model.Snippet{}, false
	}
	last := len(r.entries) - 1
	sn := r.entries[last]
	r.entries[last] = model.Snippet{}
	r.entries = r.entries[:last]
	return sn, true
}

// Peek returns the most recently pushed snippet without removing it.
func (r *Ring) Peek() (model.Snippet, bool) {
	if len(r.entries) == 0 {
		return model.Snippet{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Len returns the number of entries.
func (r *Ring) Len() int {
	return len(r.entries)
}

// Capacity returns the maximum number of entries.
func (r *Ring) Capacity() int {
	return r.capacity
}

// Entries returns a copy of the entries, oldest first.
func (r *Ring) Entries() []model.Snippet {
	out := make([]model.Snippet, len(r.entries))
	copy(out, r.entries)
	return out
}
