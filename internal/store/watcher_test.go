package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_RehydratesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	ctx := context.Background()

	// Ensure the directory exists before watching it.
	require.NoError(t, kv.Set(ctx, SnippetsKey, []model.Snippet{}))

	s := NewStore(kv)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	fw, err := NewFileWatcher(s, kv.Path(SnippetsKey))
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	// Another instance writes through its own KV handle.
	other := NewFileKV(dir)
	require.NoError(t, other.Set(ctx, SnippetsKey, []model.Snippet{{ID: "ext", Content: "from elsewhere"}}))

	assert.Eventually(t, func() bool {
		return s.GetByID("ext") != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	s := NewStore(NewMemoryKV())
	fw, err := NewFileWatcher(s, t.TempDir()+"/x.json")
	require.NoError(t, err)

	require.NoError(t, fw.Start())
	require.NoError(t, fw.Start())
	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}

func TestFileWatcher_StopAfterFailedStart(t *testing.T) {
	s := NewStore(NewMemoryKV())
	fw, err := NewFileWatcher(s, filepath.Join(t.TempDir(), "missing", "x.json"))
	require.NoError(t, err)

	require.Error(t, fw.Start())
	require.NoError(t, fw.Stop())

	// The underlying watcher is released.
	assert.ErrorIs(t, fw.fsw.Add(t.TempDir()), fsnotify.ErrClosed)
	assert.ErrorIs(t, fw.Start(), fsnotify.ErrClosed)
	require.NoError(t, fw.Stop())
}

func TestFileWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, SnippetsKey, []model.Snippet{}))

	s := NewStore(kv)
	_, err := s.Load(ctx)
	require.NoError(t, err)
	events := s.Subscribe()

	fw, err := NewFileWatcher(s, kv.Path(SnippetsKey), WithDebounce(300*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	other := NewFileKV(dir)
	for i, content := range []string{"a", "b", "c"} {
		sn := model.Snippet{ID: string(rune('x' + i)), Content: content}
		require.NoError(t, other.Set(ctx, SnippetsKey, []model.Snippet{sn}))
	}

	select {
	case ev := <-events:
		assert.Equal(t, ChangeTypeReload, ev.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload event")
	}
	assert.NotNil(t, s.GetByID("z"))

	select {
	case ev := <-events:
		t.Fatalf("unexpected second event: %+v", ev)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, SnippetsKey, []model.Snippet{}))

	s := NewStore(kv)
	_, err := s.Load(ctx)
	require.NoError(t, err)
	events := s.Subscribe()

	fw, err := NewFileWatcher(s, kv.Path(SnippetsKey), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	require.NoError(t, kv.Set(ctx, SettingsKey, map[string]string{"title": "x"}))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
