// Package app holds the application state shared by the CLI and the TUI and
// implements every user action on top of it.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/clipbox/internal/adapter/input"
	"github.com/jmylchreest/clipbox/internal/clipboard"
	"github.com/jmylchreest/clipbox/internal/codec"
	"github.com/jmylchreest/clipbox/internal/core"
	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/jmylchreest/clipbox/internal/store"
	"github.com/jmylchreest/clipbox/internal/undo"
)

// Options configures a Session.
type Options struct {
	KV        store.KV
	Clipboard clipboard.Clipboard
	Undo      undo.Config
	// PasteType is the category given to snippets pasted from the clipboard.
	PasteType string
	// MergeIcons saves the group icons of grouped imports.
	MergeIcons bool
	// SeedExamples stores example snippets the first time the store is opened.
	SeedExamples bool
	Now          func() time.Time
}

// Session is the state of one running instance: the snippet store, settings,
// category icons, undo history and the current filter.
// Actions are expected to run one at a time.
type Session struct {
	kv    store.KV
	store *store.Store
	clip  clipboard.Clipboard
	undo  *undo.Tracker
	now   func() time.Time

	settings model.Settings
	icons    model.TypeIcons

	filterText string
	filterType string

	pasteType    string
	mergeIcons   bool
	seedExamples bool
}

// NewSession creates a Session. Call Open before using it.
func NewSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.KV == nil {
		opts.KV = store.NewMemoryKV()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewSystem(clipboard.Config{})
	}
	if opts.PasteType == "" {
		opts.PasteType = model.ClipboardType
	}

	return &Session{
		kv:           opts.KV,
		store:        store.NewStore(opts.KV, store.WithClock(opts.Now)),
		clip:         opts.Clipboard,
		undo:         undo.NewTracker(opts.Undo),
		now:          opts.Now,
		settings:     model.DefaultSettings(),
		icons:        model.DefaultTypeIcons(),
		pasteType:    strings.TrimSpace(opts.PasteType),
		mergeIcons:   opts.MergeIcons,
		seedExamples: opts.SeedExamples,
	}
}

// Open loads snippets, settings and icons, then seeds examples on first run.
func (s *Session) Open(ctx context.Context) error {
	if _, err := s.store.Load(ctx); err != nil {
		return NewError(KindStorage, "open", err)
	}

	settings, err := store.LoadSettings(ctx, s.kv)
	if err != nil {
		return NewError(KindStorage, "open", err)
	}
	s.settings = settings

	icons, err := store.LoadTypeIcons(ctx, s.kv)
	if err != nil {
		return NewError(KindStorage, "open", err)
	}
	s.icons = icons

	if s.seedExamples {
		if _, err := s.SeedIfFirstRun(ctx); err != nil {
			return err
		}
	}

	slog.Debug("session opened", "snippets", s.store.Count())
	return nil
}

// Close releases the store.
func (s *Session) Close() error {
	return s.store.Close()
}

// Store returns the underlying store, e.g. to subscribe to changes.
func (s *Session) Store() *store.Store {
	return s.store
}

// exampleSnippets are stored on first run.
var exampleSnippets = []string{
	"Keep account notes here so they are easy to search. 🔐📝",
	"Paste AI prompts to reuse them in one keystroke 🤖✨",
	"Save anything you like, let your imagination run 🧠💡",
}

// SeedIfFirstRun stores the example snippets when the snippet list has
// never been written. Returns true when it seeded.
func (s *Session) SeedIfFirstRun(ctx context.Context) (bool, error) {
	if s.store.Initialized() {
		return false, nil
	}

	now := s.now()
	records := make([]model.Snippet, 0, len(exampleSnippets))
	for _, content := range exampleSnippets {
		sn, err := model.NewSnippet(content, "general", "", now)
		if err != nil {
			return false, NewError(KindStorage, "seed", err)
		}
		records = append(records, *sn)
	}

	if _, err := s.store.Import(ctx, records, store.PolicyOverwrite); err != nil {
		return false, NewError(KindStorage, "seed", err)
	}
	slog.Info("stored example snippets", "count", len(records))
	return true, nil
}

// Add creates a snippet.
func (s *Session) Add(ctx context.Context, content, typ, key string) (model.Snippet, error) {
	sn, err := s.store.Add(ctx, content, typ, key)
	if err != nil {
		return model.Snippet{}, storeError("add", err)
	}
	return sn, nil
}

// Edit replaces the content, category and keyword of a snippet.
// Editing an unknown id is a no-op that reports found=false.
func (s *Session) Edit(ctx context.Context, id, content, typ, key string) (model.Snippet, bool, error) {
	sn, found, err := s.store.Update(ctx, id, content, typ, key)
	if err != nil {
		return model.Snippet{}, false, storeError("edit", err)
	}
	return sn, found, nil
}

// Delete removes a snippet and offers it for undo.
// Deleting an unknown id is a no-op that reports found=false.
func (s *Session) Delete(ctx context.Context, id string) (model.Snippet, bool, error) {
	removed, found, err := s.store.Remove(ctx, id)
	if err != nil {
		return model.Snippet{}, false, storeError("delete", err)
	}
	if found {
		s.undo.Push(removed, s.now())
	}
	return removed, found, nil
}

// Undo restores the most recently deleted snippet at the end of the list.
// If persisting fails the snippet stays available for another attempt.
func (s *Session) Undo(ctx context.Context) (model.Snippet, error) {
	sn, ok := s.undo.Pop(s.now())
	if !ok {
		return model.Snippet{}, NewError(KindValidation, "undo", ErrNothingToUndo)
	}

	restored, err := s.store.Restore(ctx, sn)
	if err != nil {
		s.undo.Requeue(sn)
		return model.Snippet{}, storeError("undo", err)
	}
	return restored, nil
}

// UndoState reports whether undo is currently offered.
func (s *Session) UndoState() undo.State {
	return s.undo.State(s.now())
}

// UndoDeadline returns when the current undo offer expires.
func (s *Session) UndoDeadline() time.Time {
	return s.undo.Deadline()
}

// Paste reads the clipboard and stores its text as a new snippet in the
// paste category.
func (s *Session) Paste(ctx context.Context) (model.Snippet, error) {
	text, err := s.clip.Read(ctx)
	if err != nil {
		return model.Snippet{}, clipboardError("paste", err)
	}
	if strings.TrimSpace(text) == "" {
		return model.Snippet{}, NewError(KindEnvironment, "paste", clipboard.ErrEmpty)
	}
	return s.Add(ctx, text, s.pasteType, "")
}

// Copy writes the content of a snippet to the clipboard.
func (s *Session) Copy(ctx context.Context, id string) (model.Snippet, error) {
	sn := s.store.GetByID(id)
	if sn == nil {
		return model.Snippet{}, NewError(KindValidation, "copy", ErrNotFound)
	}
	if err := s.clip.Write(ctx, sn.Content); err != nil {
		return model.Snippet{}, clipboardError("copy", err)
	}
	return *sn, nil
}

// Get returns the snippet with the given id.
func (s *Session) Get(id string) (model.Snippet, bool) {
	sn := s.store.GetByID(id)
	if sn == nil {
		return model.Snippet{}, false
	}
	return *sn, true
}

// All returns every snippet in stored order.
func (s *Session) All() []model.Snippet {
	return s.store.All()
}

// SetFilter sets the free-text search.
func (s *Session) SetFilter(text string) {
	s.filterText = text
}

// SetTypeFilter sets the category filter. Empty shows all categories.
func (s *Session) SetTypeFilter(typ string) {
	s.filterType = typ
}

// Filter returns the current search text and category filter.
func (s *Session) Filter() (string, string) {
	return s.filterText, s.filterType
}

// View returns the snippets matching the current filter, most recently
// updated first.
func (s *Session) View() []model.Snippet {
	return core.View(s.store.All(), core.ViewOptions{Query: s.filterText, Type: s.filterType})
}

// Types returns the categories in use, sorted.
func (s *Session) Types() []string {
	return core.UniqueTypes(s.store.All())
}

// Settings returns the current settings.
func (s *Session) Settings() model.Settings {
	return s.settings
}

// SaveSettings validates and stores new settings.
func (s *Session) SaveSettings(ctx context.Context, title, icon string) (model.Settings, error) {
	parsed, ok := model.ParseTitleIcon(icon)
	if !ok {
		return s.settings, NewError(KindValidation, "settings", fmt.Errorf("%w: %q", ErrInvalidIcon, icon))
	}

	saved, err := store.SaveSettings(ctx, s.kv, model.Settings{Title: title, Icon: parsed})
	if err != nil {
		return s.settings, NewError(KindStorage, "settings", err)
	}
	s.settings = saved
	return saved, nil
}

// Icons returns a copy of the category icon map.
func (s *Session) Icons() model.TypeIcons {
	return s.icons.Clone()
}

// IconFor returns the icon shown for a category.
func (s *Session) IconFor(typ string) string {
	return s.icons.Resolve(typ)
}

// SetTypeIcon maps a category to an icon and saves the map.
func (s *Session) SetTypeIcon(ctx context.Context, typ, icon string) error {
	typ = strings.TrimSpace(typ)
	icon = strings.TrimSpace(icon)
	if typ == "" {
		return NewError(KindValidation, "icons", ErrEmptyType)
	}
	if icon == "" {
		return NewError(KindValidation, "icons", fmt.Errorf("%w: empty", ErrInvalidIcon))
	}

	next := s.icons.Clone()
	next[typ] = icon
	return s.saveIcons(ctx, next)
}

// RemoveTypeIcon drops the icon of a category. Built-in categories fall back
// to their default icon, others to the pin.
func (s *Session) RemoveTypeIcon(ctx context.Context, typ string) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return NewError(KindValidation, "icons", ErrEmptyType)
	}

	next := s.icons.Clone()
	delete(next, typ)
	return s.saveIcons(ctx, next)
}

func (s *Session) saveIcons(ctx context.Context, next model.TypeIcons) error {
	if err := store.SaveTypeIcons(ctx, s.kv, next); err != nil {
		return NewError(KindStorage, "icons", err)
	}
	s.icons = model.MergeTypeIcons(next)
	return nil
}

// Export writes every snippet to w in the grouped format and returns the
// number of snippets written.
func (s *Session) Export(w io.Writer, format codec.ExportFormat) (int, error) {
	groups := codec.Export(s.store.All(), s.icons)
	if err := codec.EncodeAs(w, groups, format); err != nil {
		return 0, NewError(KindEnvironment, "export", err)
	}
	return codec.Count(groups), nil
}

// ExportFile writes an export into dir under a timestamped name and returns
// its path.
func (s *Session) ExportFile(dir string, format codec.ExportFormat) (string, int, error) {
	path := filepath.Join(dir, codec.ExportFilename(s.now(), format))
	n, err := s.ExportPath(path, format)
	if err != nil {
		return "", 0, err
	}
	return path, n, nil
}

// ExportPath writes an export to path, replacing any existing file
// atomically. Missing parent directories are created.
func (s *Session) ExportPath(path string, format codec.ExportFormat) (int, error) {
	var buf bytes.Buffer
	n, err := s.Export(&buf, format)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, NewError(KindEnvironment, "export", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		_ = os.Remove(tmpPath)
		return 0, NewError(KindEnvironment, "export", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, NewError(KindEnvironment, "export", err)
	}
	return n, nil
}

// ImportReport summarizes a successful import of one document.
type ImportReport struct {
	Source   string
	Format   codec.Format
	Policy   store.ImportPolicy
	Imported int
	Dropped  int
}

// document is one raw import document and the name used in messages.
type document struct {
	name string
	data []byte
}

// Import decodes data and merges the snippets into the store with policy.
// Nothing is written unless at least one snippet is importable.
func (s *Session) Import(ctx context.Context, data []byte, policy store.ImportPolicy) (ImportReport, error) {
	reports, err := s.importDocuments(ctx, []document{{data: data}}, policy)
	if err != nil {
		return ImportReport{}, err
	}
	return reports[0], nil
}

// ImportReader reads r fully and imports it.
func (s *Session) ImportReader(ctx context.Context, r io.Reader, policy store.ImportPolicy) (ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportReport{}, NewError(KindEnvironment, "import", err)
	}
	return s.Import(ctx, data, policy)
}

// ImportSources reads and decodes every source, then imports the snippets of
// all of them with a single store write. Any unreadable or unusable source
// fails the whole import and nothing is written.
func (s *Session) ImportSources(ctx context.Context, sources []input.Source, policy store.ImportPolicy) ([]ImportReport, error) {
	if len(sources) == 0 {
		return nil, NewError(KindValidation, "import", ErrNoSources)
	}

	docs := make([]document, 0, len(sources))
	for _, src := range sources {
		data, err := src.Read(ctx)
		if err != nil {
			return nil, NewError(KindEnvironment, "import", err)
		}
		docs = append(docs, document{name: src.Name(), data: data})
	}
	return s.importDocuments(ctx, docs, policy)
}

func (s *Session) importDocuments(ctx context.Context, docs []document, policy store.ImportPolicy) ([]ImportReport, error) {
	if policy != store.PolicyOverwrite && policy != store.PolicyAppend {
		return nil, NewError(KindValidation, "import", fmt.Errorf("invalid import policy: %q", policy))
	}

	now := s.now()
	reports := make([]ImportReport, 0, len(docs))
	icons := make(model.TypeIcons)
	var records []model.Snippet

	for _, doc := range docs {
		result, err := codec.Decode(doc.data, now)
		if err != nil {
			if doc.name != "" {
				err = fmt.Errorf("%s: %w", doc.name, err)
			}
			return nil, NewError(KindFormat, "import", err)
		}

		records = append(records, result.Records...)
		for typ, icon := range result.Icons {
			icons[typ] = icon
		}
		reports = append(reports, ImportReport{
			Source:   doc.name,
			Format:   result.Format,
			Policy:   policy,
			Imported: len(result.Records),
			Dropped:  result.Dropped,
		})
	}

	n, err := s.store.Import(ctx, records, policy)
	if err != nil {
		return nil, storeError("import", err)
	}

	if s.mergeIcons && len(icons) > 0 {
		next := s.icons.Clone()
		for typ, icon := range icons {
			next[typ] = icon
		}
		if err := s.saveIcons(ctx, next); err != nil {
			slog.Warn("failed to save imported icons", "error", err)
		}
	}

	slog.Debug("imported snippets", "documents", len(docs), "imported", n, "policy", policy)
	return reports, nil
}

// storeError classifies an error returned by the store.
func storeError(op string, err error) error {
	if errors.Is(err, model.ErrEmptyContent) {
		return NewError(KindValidation, op, err)
	}
	return NewError(KindStorage, op, err)
}

// clipboardError classifies an error returned by the clipboard.
func clipboardError(op string, err error) error {
	if errors.Is(err, clipboard.ErrPermission) {
		return NewError(KindPermission, op, err)
	}
	return NewError(KindEnvironment, op, err)
}
