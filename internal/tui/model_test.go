package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/clipbox/internal/app"
	"github.com/jmylchreest/clipbox/internal/clipboard"
	"github.com/jmylchreest/clipbox/internal/config"
	"github.com/jmylchreest/clipbox/internal/store"
	"github.com/jmylchreest/clipbox/internal/undo"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

type harness struct {
	m       Model
	session *app.Session
	clip    *clipboard.Memory
	clock   *testClock
	cfg     *config.Config
}

func newHarness(t *testing.T, contents ...string) *harness {
	t.Helper()

	h := &harness{
		clip:  clipboard.NewMemory(""),
		clock: &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		cfg:   config.DefaultConfig(),
	}
	h.cfg.Export.Dir = t.TempDir()

	h.session = app.NewSession(app.Options{
		KV:         store.NewMemoryKV(),
		Clipboard:  h.clip,
		Undo:       undo.DefaultConfig(),
		PasteType:  "clipboard",
		MergeIcons: true,
		Now:        h.clock.Now,
	})
	require.NoError(t, h.session.Open(context.Background()))
	t.Cleanup(func() { _ = h.session.Close() })

	for _, c := range contents {
		_, err := h.session.Add(context.Background(), c, "", "")
		require.NoError(t, err)
		h.clock.t = h.clock.t.Add(time.Second)
	}

	h.m = New(context.Background(), h.cfg, h.session)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.send(loadSnippetsMsg{})
	return h
}

// send delivers msg and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(keys string) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

// status runs cmd and returns the status text it produces.
func status(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok, "expected a status message")
	return msg
}

func (h *harness) listContents() []string {
	out := make([]string, 0, len(h.m.snippets))
	for _, sn := range h.m.snippets {
		out = append(out, sn.Content)
	}
	return out
}

func TestModel_ResizeWithoutOpenForm(t *testing.T) {
	session := app.NewSession(app.Options{KV: store.NewMemoryKV(), Clipboard: clipboard.NewMemory("")})
	require.NoError(t, session.Open(context.Background()))
	t.Cleanup(func() { _ = session.Close() })

	m := New(context.Background(), nil, session)
	require.NotPanics(t, func() {
		next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
		m = next.(Model)
	})
	assert.True(t, m.ready)
	assert.NotEmpty(t, m.View())
}

func TestModel_ResizeWhileFormOpen(t *testing.T) {
	h := newHarness(t, "one")

	h.press("e")
	require.Equal(t, ModeForm, h.m.mode)
	require.NotPanics(t, func() {
		h.send(tea.WindowSizeMsg{Width: 60, Height: 20})
	})
	assert.Equal(t, "one", h.m.form.content.Value())
}

func TestModel_LoadShowsNewestFirst(t *testing.T) {
	h := newHarness(t, "one", "two", "three")

	assert.Equal(t, []string{"three", "two", "one"}, h.listContents())
	assert.Len(t, h.m.list.Items(), 3)
	assert.Contains(t, h.m.title(), "ClipBox")
}

func TestModel_DeleteThenUndo(t *testing.T) {
	h := newHarness(t, "one", "two")

	h.press("d")
	assert.Equal(t, []string{"one"}, h.listContents())
	assert.Equal(t, undo.StateAvailable, h.session.UndoState())
	assert.NotEmpty(t, h.m.undoBanner())

	msg := status(t, h.press("u"))
	assert.False(t, msg.isErr)
	assert.Contains(t, msg.text, "two")
	assert.ElementsMatch(t, []string{"one", "two"}, h.listContents())
	assert.Empty(t, h.m.undoBanner())
}

func TestModel_UndoBannerExpires(t *testing.T) {
	h := newHarness(t, "one", "two")

	h.press("d")
	h.clock.t = h.clock.t.Add(undo.DefaultWindow + time.Millisecond)
	h.send(undoExpiredMsg{})

	assert.Empty(t, h.m.undoBanner())
	msg := status(t, h.press("u"))
	assert.Equal(t, "Nothing to undo", msg.text)
	assert.Equal(t, []string{"one"}, h.listContents())
}

func TestModel_CopySelected(t *testing.T) {
	h := newHarness(t, "one", "two")

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	result, ok := cmd().(clipboardResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)
	assert.Equal(t, "two", h.clip.Text())

	msg := status(t, h.send(result))
	assert.Equal(t, "Copied to clipboard", msg.text)
}

func TestModel_PasteAddsSnippet(t *testing.T) {
	h := newHarness(t, "one")
	require.NoError(t, h.clip.Write(context.Background(), "from the clipboard"))

	cmd := h.press("p")
	require.NotNil(t, cmd)
	result := cmd().(clipboardResultMsg)
	require.NoError(t, result.err)
	h.send(result)

	assert.Len(t, h.m.snippets, 2)
	assert.Equal(t, "from the clipboard", result.snippet.Content)
	assert.Equal(t, "clipboard", result.snippet.Type)
}

func TestModel_SearchFiltersLive(t *testing.T) {
	h := newHarness(t, "apple pie", "banana split", "apple juice")

	h.press("/")
	assert.Equal(t, ModeSearch, h.m.mode)

	h.press("a")
	h.press("p")
	assert.ElementsMatch(t, []string{"apple pie", "apple juice"}, h.listContents())

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, h.m.mode)
	assert.Len(t, h.m.snippets, 3)
}

func TestModel_SearchAcceptsExpressions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.session.Add(ctx, "Dear Sir", "email", "")
	require.NoError(t, err)
	_, err = h.session.Add(ctx, "hunter2", "account", "pw")
	require.NoError(t, err)
	h.send(loadSnippetsMsg{})

	h.m.searchQuery = "key!="
	h.m.reload()
	assert.Equal(t, []string{"hunter2"}, h.listContents())

	h.m.searchQuery = "type=email"
	h.m.reload()
	assert.Equal(t, []string{"Dear Sir"}, h.listContents())
}

func TestModel_CycleCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, typ := range []string{"work", "email", "work"} {
		_, err := h.session.Add(ctx, "text "+typ, typ, "")
		require.NoError(t, err)
	}
	h.send(loadSnippetsMsg{})

	h.press("t")
	_, typ := h.session.Filter()
	assert.Equal(t, "email", typ)
	assert.Len(t, h.m.snippets, 1)

	h.press("t")
	_, typ = h.session.Filter()
	assert.Equal(t, "work", typ)
	assert.Len(t, h.m.snippets, 2)

	h.press("t")
	_, typ = h.session.Filter()
	assert.Equal(t, "", typ)
	assert.Len(t, h.m.snippets, 3)

	h.press("T")
	_, typ = h.session.Filter()
	assert.Equal(t, "work", typ)
}

func TestModel_DeletingLastOfCategoryClearsFilter(t *testing.T) {
	h := newHarness(t, "plain")
	_, err := h.session.Add(context.Background(), "solo", "rare", "")
	require.NoError(t, err)
	h.send(loadSnippetsMsg{})

	h.press("t")
	_, typ := h.session.Filter()
	require.Equal(t, "rare", typ)

	h.press("d")
	_, typ = h.session.Filter()
	assert.Equal(t, "", typ)
	assert.Equal(t, []string{"plain"}, h.listContents())
}

func TestModel_AddForm(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	require.Equal(t, ModeForm, h.m.mode)

	h.press("hello there")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.press("greeting")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.press("hi")

	msg := status(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlS}))
	assert.False(t, msg.isErr)
	assert.Equal(t, ModeList, h.m.mode)

	require.Len(t, h.m.snippets, 1)
	assert.Equal(t, "hello there", h.m.snippets[0].Content)
	assert.Equal(t, "greeting", h.m.snippets[0].Type)
	assert.Equal(t, "hi", h.m.snippets[0].Key)
}

func TestModel_AddFormRejectsBlankContent(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	h.press("   ")
	msg := status(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlS}))

	assert.True(t, msg.isErr)
	assert.Equal(t, ModeForm, h.m.mode)
	assert.Empty(t, h.session.All())
}

func TestModel_EditForm(t *testing.T) {
	h := newHarness(t, "old text")

	h.press("e")
	require.Equal(t, ModeForm, h.m.mode)
	assert.Equal(t, "old text", h.m.form.content.Value())

	h.m.form.content.SetValue("new text")
	status(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlS}))

	assert.Equal(t, []string{"new text"}, h.listContents())
}

func TestModel_ExportWritesFile(t *testing.T) {
	h := newHarness(t, "one", "two")

	msg := status(t, h.press("x"))
	require.False(t, msg.isErr, msg.text)

	entries, err := os.ReadDir(h.cfg.Export.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestModel_ImportAppend(t *testing.T) {
	h := newHarness(t, "existing")

	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"content":"imported","type":"x"}]`), 0o600))

	h.press("i")
	require.Equal(t, ModeImport, h.m.mode)
	h.m.pathInput.SetValue(path)
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeImportPolicy, h.m.mode)
	assert.Equal(t, 1, h.m.importCount)

	msg := status(t, h.press("a"))
	assert.False(t, msg.isErr, msg.text)
	assert.ElementsMatch(t, []string{"existing", "imported"}, h.listContents())
}

func TestModel_ImportRejectsBadFile(t *testing.T) {
	h := newHarness(t, "existing")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))

	h.press("i")
	h.m.pathInput.SetValue(path)
	msg := status(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))

	assert.True(t, msg.isErr)
	assert.Equal(t, ModeList, h.m.mode)
	assert.Equal(t, []string{"existing"}, h.listContents())
}

func TestModel_Settings(t *testing.T) {
	h := newHarness(t)

	h.press("s")
	require.Equal(t, ModeSettings, h.m.mode)
	h.m.settingsForm.title.SetValue("Snips")
	h.send(tea.KeyMsg{Type: tea.KeyTab})

	msg := status(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.False(t, msg.isErr)
	assert.Equal(t, "Snips", h.session.Settings().Title)
	assert.Contains(t, h.m.list.Title, "Snips")
}

func TestModel_HelpToggle(t *testing.T) {
	h := newHarness(t)

	h.press("?")
	assert.Equal(t, ModeHelp, h.m.mode)
	assert.Contains(t, h.m.View(), "Keyboard Shortcuts")

	h.press("?")
	assert.Equal(t, ModeList, h.m.mode)
}
