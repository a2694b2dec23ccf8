package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmylchreest/clipbox/internal/app"
	"github.com/jmylchreest/clipbox/internal/config"
	"github.com/jmylchreest/clipbox/internal/core"
	"github.com/jmylchreest/clipbox/internal/model"
	"github.com/jmylchreest/clipbox/internal/store"
	"github.com/jmylchreest/clipbox/internal/undo"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeForm:
		return m.form.view() + "\n" + m.buildKeybindBar(m.width, "form")
	case ModeImport:
		return headerStyle.Render("Import") + "\n\n" + "File: " + m.pathInput.View() +
			"\n\n" + m.buildKeybindBar(m.width, "prompt")
	case ModeImportPolicy:
		return m.viewImportPolicy()
	case ModeSettings:
		return m.settingsForm.view() + "\n" + m.buildKeybindBar(m.width, "settings")
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.categoryBar() + "\n"
	s += m.list.View() + "\n"
	s += m.undoBanner() + "\n"
	s += m.statusLine("list")
	return s
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.snippets))
	if isFilterExpression(m.searchInput.Value()) {
		countStr = "(expression) " + countStr
	}

	searchBar := "Search: " + m.searchInput.View() + " " + dimStyle.Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.undoBanner() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewDetail() string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Phrase")
	return header + "\n" + m.viewport.View() + "\n" + m.statusLine("detail")
}

func (m Model) viewImportPolicy() string {
	s := headerStyle.Render("Import") + "\n\n"
	s += fmt.Sprintf("%s: %d phrases found\n\n", m.importPath, m.importCount)
	s += keyStyle.Render("o") + " overwrite all current phrases\n"
	s += keyStyle.Render("a") + " append to current phrases\n"
	s += keyStyle.Render("esc") + " cancel\n"
	return s
}

func (m Model) viewHelp() string {
	s := headerStyle.MarginBottom(1).Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp()) + "\n\n"
	s += dimStyle.Render("Search also accepts field expressions: type=work, content~hello, key!=, updated>7d") + "\n\n"
	s += dimStyle.Render("Press ? or esc to return")
	return s
}

// renderDetail renders the full snippet for the detail viewport.
func (m Model) renderDetail(sn model.Snippet) string {
	labelStyle := dimStyle

	catStyle := lipgloss.NewStyle()
	if m.cfg.TUI.ShowColors {
		catStyle = catStyle.Foreground(lipgloss.Color(core.ColorForType(sn.Type).Hex()))
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Category: ") + catStyle.Render(m.session.IconFor(sn.Type)+" "+sn.TypeLabel()) + "\n")
	if sn.Key != "" {
		b.WriteString(labelStyle.Render("Keyword:  ") + "#" + sn.Key + "\n")
	}
	b.WriteString(labelStyle.Render("Updated:  ") + sn.RelativeTime() + "\n")
	b.WriteString(labelStyle.Render("Created:  ") + sn.CreatedTime().Format(time.DateTime) + "\n")
	b.WriteString(labelStyle.Render("ID:       ") + sn.ID + "\n")
	b.WriteString("\n" + sn.Content + "\n")
	return b.String()
}

// categoryBar renders the category filter tabs, each in its category color.
func (m Model) categoryBar() string {
	_, current := m.session.Filter()
	active := lipgloss.NewStyle().Bold(true).Underline(true)

	tabs := []string{"All"}
	if current == "" {
		tabs[0] = active.Render("All")
	}

	for _, typ := range m.session.Types() {
		label := m.session.IconFor(typ) + " " + typ
		style := lipgloss.NewStyle()
		if m.cfg.TUI.ShowColors {
			style = style.Foreground(lipgloss.Color(core.ColorForType(typ).Hex()))
		}
		if typ == current {
			style = style.Inherit(active)
		}
		tabs = append(tabs, style.Render(label))
	}

	bar := strings.Join(tabs, dimStyle.Render("  "))
	if m.width > 0 && lipgloss.Width(bar) > m.width {
		// Too many categories to show; name the active one only.
		label := "All"
		if current != "" {
			label = current
		}
		bar = dimStyle.Render("Category: ") + active.Render(label)
	}
	return bar
}

// undoBanner shows the undo affordance while the last delete can be undone.
func (m Model) undoBanner() string {
	if m.session.UndoState() != undo.StateAvailable {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Phrase deleted. Press ") +
		keyStyle.Render("u") + lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(" to undo")
}

// statusLine shows the status message, or the keybind bar when there is none.
func (m Model) statusLine(mode string) string {
	if m.statusMsg == "" {
		if !m.cfg.TUI.ShowKeys {
			return ""
		}
		return m.buildKeybindBar(m.width, mode)
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	if m.statusErr {
		statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
	}
	return statusStyle.Render(m.statusMsg)
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode string) string {
	var binds []keybind

	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "copy", 2},
			{"?", "help", 3},
			{"/", "search", 4},
			{"a", "add", 5},
			{"e", "edit", 6},
			{"d", "delete", 7},
			{"tab", "category", 8},
			{"p", "paste", 9},
			{"v", "view", 10},
			{"x", "export", 11},
			{"i", "import", 12},
			{"s", "settings", 13},
		}
	case "detail":
		binds = []keybind{
			{"esc", "back", 1},
			{"c", "copy", 2},
			{"e", "edit", 3},
			{"j/k", "scroll", 4},
		}
	case "search":
		binds = []keybind{
			{"enter", "done", 1},
			{"esc", "clear", 2},
			{"↑/↓", "navigate", 3},
		}
	case "form":
		binds = []keybind{
			{"ctrl+s", "save", 1},
			{"esc", "cancel", 2},
			{"tab", "next field", 3},
		}
	case "settings":
		binds = []keybind{
			{"enter", "save", 1},
			{"esc", "cancel", 2},
			{"tab", "next icon", 3},
		}
	case "prompt":
		binds = []keybind{
			{"enter", "open", 1},
			{"esc", "cancel", 2},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(item)
		if result != "" {
			testLen += lipgloss.Width(result) + len(separator)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return dimStyle.Render(result)
}

// truncate shortens s to at most maxLen runes, ending in an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(r[:maxLen-1]) + "…"
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config    *config.Config
	Session   *app.Session
	WatchPath string // Snippet file to watch for changes (empty = no watching)
}

// Run starts the TUI with the given options.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Session == nil {
		return fmt.Errorf("tui: no session")
	}

	var watcher *store.FileWatcher
	if opts.WatchPath != "" {
		var err error
		watcher, err = store.NewFileWatcher(opts.Session.Store(), opts.WatchPath)
		if err != nil {
			slog.Warn("failed to create file watcher", "error", err)
		} else if err := watcher.Start(); err != nil {
			slog.Warn("failed to start file watcher", "error", err)
		}
	}

	m := New(ctx, opts.Config, opts.Session)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()

	if watcher != nil {
		if stopErr := watcher.Stop(); stopErr != nil {
			slog.Debug("failed to stop file watcher", "error", stopErr)
		}
	}

	return err
}
