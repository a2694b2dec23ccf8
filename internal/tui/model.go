// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmylchreest/clipbox/internal/adapter/input"
	"github.com/jmylchreest/clipbox/internal/app"
	"github.com/jmylchreest/clipbox/internal/codec"
	"github.com/jmylchreest/clipbox/internal/config"
	"github.com/jmylchreest/clipbox/internal/core"
	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/jmylchreest/clipbox/internal/store"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeForm
	ModeImport
	ModeImportPolicy
	ModeSettings
	ModeHelp
)

// statusDuration is how long a status message stays on screen.
const statusDuration = 3 * time.Second

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg     *config.Config
	session *app.Session
	ctx     context.Context

	// Current mode
	mode Mode

	// Components
	list         list.Model
	viewport     viewport.Model
	searchInput  textinput.Model
	pathInput    textinput.Model
	help         help.Model
	form         snippetForm
	settingsForm settingsForm

	// State
	snippets    []model.Snippet
	searchQuery string
	importPath  string
	importData  []byte
	importCount int
	width       int
	height      int
	ready       bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	// Refresh channel subscription
	refreshCh <-chan store.ChangeEvent
}

// snippetItem wraps a snippet for the list component.
type snippetItem struct {
	snippet model.Snippet
	icon    string
}

func (i snippetItem) Title() string {
	return i.snippet.ContentTruncated(200)
}

func (i snippetItem) Description() string {
	return i.category() + i.details()
}

func (i snippetItem) FilterValue() string {
	return i.snippet.Content + " " + i.snippet.Type + " " + i.snippet.Key
}

func (i snippetItem) category() string {
	return i.icon + " " + i.snippet.TypeLabel()
}

func (i snippetItem) details() string {
	var s string
	if i.snippet.Key != "" {
		s += " · #" + i.snippet.Key
	}
	return s + " · " + i.snippet.RelativeTime()
}

// snippetDelegate is a list delegate that colors each category.
type snippetDelegate struct {
	list.DefaultDelegate
	showColors bool
}

func newSnippetDelegate(showColors bool) snippetDelegate {
	d := list.NewDefaultDelegate()
	return snippetDelegate{DefaultDelegate: d, showColors: showColors}
}

// Render renders a list item with its category in the category color.
func (d snippetDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(snippetItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	titleStyle := d.Styles.NormalTitle
	descStyle := d.Styles.NormalDesc
	if index == m.Index() {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	}

	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()

	title := truncate(si.Title(), itemWidth)
	category := truncate(si.category(), itemWidth)
	details := truncate(si.details(), itemWidth-lipgloss.Width(category))

	catStyle := descStyle
	if d.showColors {
		catStyle = catStyle.Foreground(lipgloss.Color(core.ColorForType(si.snippet.Type).Hex()))
	}
	restStyle := descStyle.UnsetBorderLeft().UnsetPaddingLeft()

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, catStyle.Render(category)+restStyle.Render(details))
}

// New creates a new TUI model.
func New(ctx context.Context, cfg *config.Config, session *app.Session) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, newSnippetDelegate(cfg.TUI.ShowColors), 0, 0)
	l.SetShowStatusBar(true)
	l.SetShowHelp(cfg.TUI.ShowHelp)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("phrase", "phrases")

	searchInput := textinput.New()
	searchInput.Placeholder = "Search, or field=value..."
	searchInput.CharLimit = 200

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to a JSON export"
	pathInput.CharLimit = 1024

	m := Model{
		cfg:         cfg,
		session:     session,
		ctx:         ctx,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		pathInput:   pathInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
	m.list.Title = m.title()
	m.list.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{m.keys.Copy, m.keys.Add, m.keys.Delete, m.keys.Undo, m.keys.Search}
	}

	if session != nil {
		m.refreshCh = session.Store().Subscribe()
	}

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadSnippets,
		m.watchForChanges,
	)
}

func (m Model) loadSnippets() tea.Msg {
	return loadSnippetsMsg{}
}

type loadSnippetsMsg struct{}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	if _, ok := <-m.refreshCh; !ok {
		return nil
	}
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// clipboardResultMsg reports a finished copy or paste.
type clipboardResultMsg struct {
	paste   bool
	snippet model.Snippet
	err     error
}

// undoExpiredMsg fires when the undo window of the last delete closes.
type undoExpiredMsg struct{}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, max(msg.Height-m.chromeHeight(), 1))
		m.viewport = viewport.New(msg.Width, max(msg.Height-4, 1))
		m.viewport.YPosition = 2
		if m.mode == ModeForm {
			m.form.setWidth(msg.Width)
		}
		m.help.Width = msg.Width

		return m, nil

	case loadSnippetsMsg:
		m.reload()
		return m, nil

	case refreshMsg:
		m.reload()
		return m, m.watchForChanges

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(statusDuration, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case undoExpiredMsg:
		// Nothing to change; the re-render drops the undo banner.
		return m, nil

	case clipboardResultMsg:
		return m.handleClipboardResult(msg)
	}

	// Update child components
	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case ModeForm:
		m.form, cmd = m.form.update(msg)
	case ModeImport:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case ModeSettings:
		m.settingsForm.title, cmd = m.settingsForm.title.Update(msg)
	}

	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Text-entry modes own every other key.
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeImport:
		return m.handleImportPathKey(msg)
	case ModeSettings:
		return m.handleSettingsKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeImportPolicy:
		return m.handleImportPolicyKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if _, typ := m.session.Filter(); m.searchQuery != "" || typ != "" {
			m.searchQuery = ""
			m.session.SetTypeFilter("")
			m.reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if sn := m.selectedSnippet(); sn != nil {
			return m, m.copySnippet(sn.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.View):
		if sn := m.selectedSnippet(); sn != nil {
			m.viewport.SetContent(m.renderDetail(*sn))
			m.viewport.GotoTop()
			m.mode = ModeDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		return m.openForm(nil)

	case key.Matches(msg, m.keys.Edit):
		if sn := m.selectedSnippet(); sn != nil {
			return m.openForm(sn)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()

	case key.Matches(msg, m.keys.Undo):
		return m.undoDelete()

	case key.Matches(msg, m.keys.Paste):
		return m, m.pasteClipboard()

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextType):
		m.cycleType(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevType):
		m.cycleType(-1)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportSnippets()

	case key.Matches(msg, m.keys.Import):
		m.mode = ModeImport
		m.pathInput.SetValue("")
		cmd := m.pathInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Settings):
		m.settingsForm = newSettingsForm(m.session.Settings())
		m.mode = ModeSettings
		cmd := m.settingsForm.title.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if sn := m.selectedSnippet(); sn != nil {
			return m, m.copySnippet(sn.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if sn := m.selectedSnippet(); sn != nil {
			return m.openForm(sn)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchQuery = ""
		m.reload()
		return m, nil
	case tea.KeyEnter:
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering as the query changes
	if q := m.searchInput.Value(); q != m.searchQuery {
		m.searchQuery = q
		m.reload()
	}

	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.submitForm()
	case key.Matches(msg, m.keys.NextField):
		cmd := m.form.focusField(m.form.focus + 1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevField):
		cmd := m.form.focusField(m.form.focus - 1)
		return m, cmd
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleImportPathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.pathInput.Blur()
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m, nil
		}
		m.pathInput.Blur()

		data, err := input.NewSource(path).Read(m.ctx)
		if err != nil {
			m.mode = ModeList
			return m, setStatus("Import failed: "+err.Error(), true)
		}
		result, err := codec.Decode(data, time.Now())
		if err != nil {
			m.mode = ModeList
			return m, setStatus("Import failed: "+err.Error(), true)
		}

		m.importPath = path
		m.importData = data
		m.importCount = len(result.Records)
		m.mode = ModeImportPolicy
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) handleImportPolicyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var policy store.ImportPolicy
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.importData = nil
		return m, setStatus("Import cancelled", false)
	case key.Matches(msg, m.keys.Overwrite):
		policy = store.PolicyOverwrite
	case key.Matches(msg, m.keys.AppendMode):
		policy = store.PolicyAppend
	default:
		return m, nil
	}

	data := m.importData
	m.importData = nil
	m.mode = ModeList

	report, err := m.session.Import(m.ctx, data, policy)
	if err != nil {
		return m, setStatus("Import failed: "+err.Error(), true)
	}

	m.reload()
	text := fmt.Sprintf("Imported %d phrases (%s, %s)", report.Imported, report.Format, report.Policy)
	if report.Dropped > 0 {
		text += fmt.Sprintf(", skipped %d invalid", report.Dropped)
	}
	return m, setStatus(text, false)
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.settingsForm.cycleIcon(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.settingsForm.cycleIcon(-1)
		return m, nil
	case msg.Type == tea.KeyEnter, key.Matches(msg, m.keys.Save):
		saved, err := m.session.SaveSettings(m.ctx, m.settingsForm.title.Value(), string(m.settingsForm.selected()))
		if err != nil {
			return m, setStatus("Settings not saved: "+err.Error(), true)
		}
		m.mode = ModeList
		m.list.Title = m.title()
		return m, setStatus("Saved settings: "+saved.Glyph()+" "+saved.Title, false)
	}

	var cmd tea.Cmd
	m.settingsForm.title, cmd = m.settingsForm.title.Update(msg)
	return m, cmd
}

func (m Model) openForm(sn *model.Snippet) (tea.Model, tea.Cmd) {
	m.form = newSnippetForm(sn, m.session.Types(), m.width)
	m.mode = ModeForm
	cmd := m.form.focusField(fieldContent)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	content, typ, k := m.form.values()

	var (
		saved model.Snippet
		err   error
	)
	if m.form.editID == "" {
		saved, err = m.session.Add(m.ctx, content, typ, k)
	} else {
		var found bool
		saved, found, err = m.session.Edit(m.ctx, m.form.editID, content, typ, k)
		if err == nil && !found {
			m.mode = ModeList
			m.reload()
			return m, setStatus("Phrase no longer exists", true)
		}
	}

	if err != nil {
		// Invalid input keeps the form open for correction.
		if !app.IsKind(err, app.KindValidation) {
			m.mode = ModeList
		}
		return m, setStatus("Not saved: "+err.Error(), true)
	}

	m.mode = ModeList
	m.reload()
	m.selectID(saved.ID)
	return m, setStatus("Saved", false)
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	sn := m.selectedSnippet()
	if sn == nil {
		return m, nil
	}

	removed, found, err := m.session.Delete(m.ctx, sn.ID)
	if err != nil {
		return m, setStatus("Delete failed: "+err.Error(), true)
	}
	m.reload()
	if !found {
		return m, nil
	}

	slog.Debug("deleted phrase", "id", removed.ID)
	return m, undoTick(m.session.UndoDeadline())
}

func (m Model) undoDelete() (tea.Model, tea.Cmd) {
	restored, err := m.session.Undo(m.ctx)
	if errors.Is(err, app.ErrNothingToUndo) {
		return m, setStatus("Nothing to undo", false)
	}
	if err != nil {
		return m, setStatus("Undo failed: "+err.Error(), true)
	}

	m.reload()
	m.selectID(restored.ID)
	return m, setStatus("Restored "+restored.ContentTruncated(40), false)
}

// undoTick re-renders once the undo window has passed.
func undoTick(deadline time.Time) tea.Cmd {
	d := max(time.Until(deadline), 0)
	return tea.Tick(d, func(time.Time) tea.Msg {
		return undoExpiredMsg{}
	})
}

func (m Model) copySnippet(id string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		sn, err := session.Copy(ctx, id)
		return clipboardResultMsg{snippet: sn, err: err}
	}
}

func (m Model) pasteClipboard() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		sn, err := session.Paste(ctx)
		return clipboardResultMsg{paste: true, snippet: sn, err: err}
	}
}

func (m Model) handleClipboardResult(msg clipboardResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil && msg.paste:
		return m, setStatus("Paste failed: "+msg.err.Error(), true)
	case msg.err != nil:
		return m, setStatus("Copy failed: "+msg.err.Error(), true)
	case msg.paste:
		m.reload()
		m.selectID(msg.snippet.ID)
		return m, setStatus("Added from clipboard", false)
	default:
		return m, setStatus("Copied to clipboard", false)
	}
}

func (m Model) exportSnippets() tea.Cmd {
	format, err := codec.ParseExportFormat(m.cfg.Export.Format)
	if err != nil {
		return setStatus("Export failed: "+err.Error(), true)
	}

	path, n, err := m.session.ExportFile(m.cfg.ExportDir(), format)
	if err != nil {
		return setStatus("Export failed: "+err.Error(), true)
	}
	return setStatus(fmt.Sprintf("Exported %d phrases to %s", n, path), false)
}

// cycleType steps the category filter through All and each category in use.
func (m *Model) cycleType(delta int) {
	types := append([]string{""}, m.session.Types()...)
	_, current := m.session.Filter()

	idx := slices.Index(types, current)
	if idx < 0 {
		idx = 0
	}
	idx = (idx + delta + len(types)) % len(types)

	m.session.SetTypeFilter(types[idx])
	m.reload()
	m.list.Select(0)
}

// reload rebuilds the visible list from the session.
func (m *Model) reload() {
	if m.session == nil {
		return
	}

	// Drop a category filter whose last phrase is gone.
	if _, typ := m.session.Filter(); typ != "" && !slices.Contains(m.session.Types(), typ) {
		m.session.SetTypeFilter("")
	}

	m.snippets = m.visibleSnippets()
	m.list.SetItems(m.buildListItems())
	m.list.Title = m.title()
}

// visibleSnippets applies the search box. A query that parses as a field
// expression filters by expression, anything else is a substring search.
func (m *Model) visibleSnippets() []model.Snippet {
	if isFilterExpression(m.searchQuery) {
		expr, _ := core.ParseFilter(m.searchQuery)
		m.session.SetFilter("")
		return core.FilterWithExpr(m.session.View(), expr)
	}
	m.session.SetFilter(m.searchQuery)
	return m.session.View()
}

// isFilterExpression reports whether query is a valid field expression such
// as "type=work" or "content~hello,key!=".
func isFilterExpression(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	expr, err := core.ParseFilter(query)
	return err == nil && len(expr.Conditions) > 0
}

func (m Model) buildListItems() []list.Item {
	icons := m.session.Icons()
	items := make([]list.Item, len(m.snippets))
	for i, sn := range m.snippets {
		items[i] = snippetItem{snippet: sn, icon: icons.Resolve(sn.Type)}
	}
	return items
}

// selectedSnippet returns the highlighted snippet, if any.
func (m Model) selectedSnippet() *model.Snippet {
	item, ok := m.list.SelectedItem().(snippetItem)
	if !ok {
		return nil
	}
	sn := item.snippet
	return &sn
}

// selectID moves the cursor to the snippet with id when it is visible.
func (m *Model) selectID(id string) {
	for i, sn := range m.snippets {
		if sn.ID == id {
			m.list.Select(i)
			return
		}
	}
}

func (m Model) title() string {
	if m.session == nil {
		return model.DefaultTitle
	}
	s := m.session.Settings()
	return s.Glyph() + " " + s.Title
}

// chromeHeight is the number of lines around the list: category bar,
// undo banner and status line.
func (m Model) chromeHeight() int {
	return 3
}
