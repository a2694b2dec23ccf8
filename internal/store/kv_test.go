package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKV_SetAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	kv := NewFileKV(dir)
	ctx := context.Background()

	in := []model.Snippet{{ID: "a", Content: "alpha", Type: "t", CreatedAt: 1, UpdatedAt: 2}}
	require.NoError(t, kv.Set(ctx, SnippetsKey, in))

	// Directory created and no temp file left behind.
	_, err := os.Stat(kv.Path(SnippetsKey))
	require.NoError(t, err)
	_, err = os.Stat(kv.Path(SnippetsKey) + ".tmp")
	assert.True(t, os.IsNotExist(err))

	var out []model.Snippet
	found, err := kv.Get(ctx, SnippetsKey, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestFileKV_GetMissing(t *testing.T) {
	kv := NewFileKV(t.TempDir())

	var out []model.Snippet
	found, err := kv.Get(context.Background(), "nothing", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
}

func TestFileKV_GetCorrupt(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	require.NoError(t, os.WriteFile(kv.Path(SettingsKey), []byte("{not json"), 0600))

	var s model.Settings
	found, err := kv.Get(context.Background(), SettingsKey, &s)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestFileKV_InvalidKey(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		err := kv.Set(ctx, key, 1)
		assert.ErrorIs(t, err, ErrInvalidKey, key)

		var v int
		_, err = kv.Get(ctx, key, &v)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileKV_CanceledContext(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, kv.Set(ctx, "k", 1), context.Canceled)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	var v map[string]string
	found, err := kv.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", map[string]string{"a": "b"}))
	found, err = kv.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", v["a"])

	raw, ok := kv.Raw("k")
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":"b"}`, string(raw))
}

func TestSettings_LoadDefaultsAndSave(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	s, err := LoadSettings(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)

	saved, err := SaveSettings(ctx, kv, model.Settings{Title: "  Mine ", Icon: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, model.Settings{Title: "Mine", Icon: model.DefaultIcon}, saved)

	loaded, err := LoadSettings(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSettings_LoadMergesPartial(t *testing.T) {
	kv := NewMemoryKV()
	kv.SetRaw(SettingsKey, []byte(`{"icon":"cat"}`))

	s, err := LoadSettings(context.Background(), kv)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTitle, s.Title)
	assert.Equal(t, model.IconCat, s.Icon)
}

func TestTypeIcons_LoadAndSave(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	icons, err := LoadTypeIcons(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTypeIcons(), icons)

	icons["music"] = "🎵"
	require.NoError(t, SaveTypeIcons(ctx, kv, icons))

	loaded, err := LoadTypeIcons(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "🎵", loaded.Resolve("music"))
}
