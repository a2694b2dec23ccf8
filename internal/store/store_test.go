package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	s := NewStore(kv, WithClock(stepClock()))
	t.Cleanup(func() { s.Close() })
	return s, kv
}

func storedSnippets(t *testing.T, kv KV) []model.Snippet {
	t.Helper()
	var out []model.Snippet
	_, err := kv.Get(context.Background(), SnippetsKey, &out)
	require.NoError(t, err)
	return out
}

func TestNewStore(t *testing.T) {
	s := NewStore(NewMemoryKV())
	assert.NotNil(t, s)
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Initialized())
}

func TestStore_Add(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, "first", "work", "f")
	require.NoError(t, err)
	second, err := s.Add(ctx, "second", "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Count())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	// Prepended: newest first.
	all := s.All()
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	// Written through.
	persisted := storedSnippets(t, kv)
	assert.Equal(t, all, persisted)
	assert.True(t, s.Initialized())
}

func TestStore_Add_GrowsByOneWithUniqueID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ids := make(map[string]bool)
	for i := range 20 {
		before := s.Count()
		sn, err := s.Add(ctx, "content", "t", "")
		require.NoError(t, err)
		assert.Equal(t, before+1, s.Count(), "iteration %d", i)
		assert.False(t, ids[sn.ID])
		ids[sn.ID] = true
	}
}

func TestStore_Add_EmptyContent(t *testing.T) {
	s, kv := newTestStore(t)

	_, err := s.Add(context.Background(), "   ", "work", "")
	assert.ErrorIs(t, err, model.ErrEmptyContent)
	assert.Equal(t, 0, s.Count())

	_, written := kv.Raw(SnippetsKey)
	assert.False(t, written)
}

func TestStore_Update(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	orig, err := s.Add(ctx, "old", "a", "k1")
	require.NoError(t, err)

	updated, found, err := s.Update(ctx, orig.ID, " new ", " b ", " k2 ")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "new", updated.Content)
	assert.Equal(t, "b", updated.Type)
	assert.Equal(t, "k2", updated.Key)
	assert.Greater(t, updated.UpdatedAt, orig.UpdatedAt)

	assert.Equal(t, updated, *s.GetByID(orig.ID))
	assert.Equal(t, updated, storedSnippets(t, kv)[0])
}

func TestStore_Update_UnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "keep", "", "")
	require.NoError(t, err)
	before := s.All()

	_, found, err := s.Update(ctx, "missing", "x", "", "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, s.All())
}

func TestStore_Update_EmptyContentRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sn, err := s.Add(ctx, "keep", "", "")
	require.NoError(t, err)

	_, _, err = s.Update(ctx, sn.ID, "", "x", "")
	assert.ErrorIs(t, err, model.ErrEmptyContent)
	assert.Equal(t, "keep", s.GetByID(sn.ID).Content)
}

func TestStore_Remove(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, "a", "", "")
	b, _ := s.Add(ctx, "b", "", "")
	c, _ := s.Add(ctx, "c", "", "")

	removed, found, err := s.Remove(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, b, removed)

	assert.Nil(t, s.GetByID(b.ID))
	assert.Equal(t, []string{c.ID, a.ID}, ids(s.All()))
	assert.Equal(t, []string{c.ID, a.ID}, ids(storedSnippets(t, kv)))

	_, found, err = s.Remove(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Restore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, "a", "", "")
	b, _ := s.Add(ctx, "b", "", "")

	removed, _, err := s.Remove(ctx, b.ID)
	require.NoError(t, err)

	restored, err := s.Restore(ctx, removed)
	require.NoError(t, err)
	assert.Equal(t, b, restored)

	// Appended, not prepended.
	assert.Equal(t, []string{a.ID, b.ID}, ids(s.All()))
}

func TestStore_Restore_CollidingID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, "a", "", "")

	restored, err := s.Restore(ctx, a)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, restored.ID)
	assert.Equal(t, 2, s.Count())
}

func TestStore_PersistFailureLeavesListUntouched(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "a", "t", "")
	require.NoError(t, err)
	before := s.All()

	kv.FailSet = errors.New("disk full")

	_, err = s.Add(ctx, "b", "", "")
	assert.ErrorContains(t, err, "disk full")

	_, _, err = s.Update(ctx, a.ID, "changed", "", "")
	assert.Error(t, err)

	_, _, err = s.Remove(ctx, a.ID)
	assert.Error(t, err)

	_, err = s.Import(ctx, []model.Snippet{{ID: "x", Content: "x"}}, PolicyOverwrite)
	assert.Error(t, err)

	assert.Equal(t, before, s.All())
}

func TestStore_Import_Overwrite(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, "old", "", "")

	n, err := s.Import(ctx, []model.Snippet{
		{ID: "i1", Content: "one"},
		{ID: "i2", Content: "two"},
	}, PolicyOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"i1", "i2"}, ids(s.All()))
	assert.Len(t, storedSnippets(t, kv), 2)
}

func TestStore_Import_AppendPrependsAndDedupesIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	existing, _ := s.Add(ctx, "old", "", "")

	n, err := s.Import(ctx, []model.Snippet{
		{ID: existing.ID, Content: "clash"},
		{ID: "dup", Content: "one"},
		{ID: "dup", Content: "two"},
		{Content: "no id"},
	}, PolicyAppend)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all := s.All()
	require.Len(t, all, 5)
	assert.Equal(t, "clash", all[0].Content)
	assert.NotEqual(t, existing.ID, all[0].ID)
	assert.Equal(t, "dup", all[1].ID)
	assert.NotEqual(t, "dup", all[2].ID)
	assert.NotEmpty(t, all[3].ID)
	assert.Equal(t, existing.ID, all[4].ID)

	seen := make(map[string]bool)
	for _, sn := range all {
		assert.False(t, seen[sn.ID])
		seen[sn.ID] = true
	}
}

func TestStore_Import_InvalidPolicy(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Import(context.Background(), []model.Snippet{{Content: "x"}}, "sideways")
	assert.Error(t, err)
}

func TestStore_Load(t *testing.T) {
	kv := NewMemoryKV()
	kv.SetRaw(SnippetsKey, []byte(`[
		{"id":"a","content":"alpha","type":"t","createdAt":1,"updatedAt":2},
		{"id":"","content":"no id"},
		{"id":"b","content":""},
		{"id":"a","content":"repeat"},
		{"id":"c","content":"gamma","key":"g"}
	]`))

	s := NewStore(kv)
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, ids(loaded))
	assert.Equal(t, "g", s.GetByID("c").Key)
	assert.True(t, s.Initialized())
}

func TestStore_Load_Missing(t *testing.T) {
	s := NewStore(NewMemoryKV())
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.False(t, s.Initialized())
}

func TestStore_Save(t *testing.T) {
	s, kv := newTestStore(t)

	err := s.Save(context.Background(), []model.Snippet{
		{ID: "x", Content: "1"},
		{ID: "x", Content: "2"},
	})
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
	assert.Equal(t, all, storedSnippets(t, kv))
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := newTestStore(t)
	ch := s.Subscribe()

	sn, err := s.Add(context.Background(), "x", "", "")
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, ChangeTypeAdd, ev.Type)
		assert.Equal(t, sn.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected change event")
	}

	s.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestStore_Closed(t *testing.T) {
	s := NewStore(NewMemoryKV())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Add(context.Background(), "x", "", "")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_Hydrate(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv)
	ch := s.Subscribe()

	kv.SetRaw(SnippetsKey, []byte(`[{"id":"z","content":"external"}]`))
	require.NoError(t, s.Hydrate(context.Background()))

	assert.Equal(t, 1, s.Count())
	ev := <-ch
	assert.Equal(t, ChangeTypeReload, ev.Type)
}

func TestParseImportPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ImportPolicy
		wantErr bool
	}{
		{"overwrite", PolicyOverwrite, false},
		{"Replace", PolicyOverwrite, false},
		{"append", PolicyAppend, false},
		{" merge ", PolicyAppend, false},
		{"", "", true},
		{"both", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImportPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ids(snippets []model.Snippet) []string {
	out := make([]string, len(snippets))
	for i, sn := range snippets {
		out[i] = sn.ID
	}
	return out
}
