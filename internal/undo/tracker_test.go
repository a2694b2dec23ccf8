package undo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_States(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultConfig())

	assert.Equal(t, StateIdle, tr.State(base))

	tr.Push(snippet("a"), base)
	assert.Equal(t, StateAvailable, tr.State(base))
	assert.Equal(t, StateAvailable, tr.State(base.Add(4999*time.Millisecond)))
	assert.Equal(t, StateExpired, tr.State(base.Add(5*time.Second)))
	assert.Equal(t, 1, tr.Len(), "expiry keeps the entry")
}

func TestTracker_PushRestartsWindow(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultConfig())

	tr.Push(snippet("a"), base)
	tr.Push(snippet("b"), base.Add(4*time.Second))

	assert.Equal(t, StateAvailable, tr.State(base.Add(8*time.Second)))
	assert.Equal(t, base.Add(9*time.Second), tr.Deadline())
}

func TestTracker_PopWithinWindow(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultConfig())
	tr.Push(snippet("a"), base)

	sn, ok := tr.Pop(base.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, "a", sn.ID)

	_, ok = tr.Pop(base.Add(time.Second))
	assert.False(t, ok, "an entry restores at most once")
	assert.Equal(t, StateIdle, tr.State(base.Add(time.Second)))
}

func TestTracker_PopAfterExpiry(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	late := base.Add(10 * time.Second)

	t.Run("inert by default", func(t *testing.T) {
		tr := NewTracker(DefaultConfig())
		tr.Push(snippet("a"), base)

		_, ok := tr.Pop(late)
		assert.False(t, ok)
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("allowed by policy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowAfterExpiry = true
		tr := NewTracker(cfg)
		tr.Push(snippet("a"), base)

		sn, ok := tr.Pop(late)
		require.True(t, ok)
		assert.Equal(t, "a", sn.ID)
	})
}

func TestTracker_Requeue(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultConfig())
	tr.Push(snippet("a"), base)

	sn, ok := tr.Pop(base)
	require.True(t, ok)
	tr.Requeue(sn)

	peek, ok := tr.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", peek.ID)
	assert.Equal(t, StateAvailable, tr.State(base.Add(time.Second)))
}

func TestTracker_CustomWindow(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(Config{Capacity: 2, Window: time.Second})
	assert.Equal(t, time.Second, tr.Window())

	tr.Push(snippet("a"), base)
	assert.Equal(t, StateExpired, tr.State(base.Add(time.Second)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "available", StateAvailable.String())
	assert.Equal(t, "expired", StateExpired.String())
}
