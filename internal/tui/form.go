package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmylchreest/clipbox/internal/model"
)

// Form field indexes.
const (
	fieldContent = iota
	fieldType
	fieldKey
	fieldCount
)

// snippetForm edits the three user fields of a snippet.
type snippetForm struct {
	editID  string // empty when adding
	content textarea.Model
	typ     textinput.Model
	key     textinput.Model
	focus   int
}

// newSnippetForm creates a form, prefilled from sn when editing.
// types feeds category completion.
func newSnippetForm(sn *model.Snippet, types []string, width int) snippetForm {
	content := textarea.New()
	content.Placeholder = "Phrase content..."
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.SetHeight(6)

	typ := textinput.New()
	typ.Placeholder = "Category (optional)"
	typ.CharLimit = 64
	typ.ShowSuggestions = true
	typ.SetSuggestions(types)

	k := textinput.New()
	k.Placeholder = "Keyword (optional)"
	k.CharLimit = 64

	f := snippetForm{content: content, typ: typ, key: k}
	if sn != nil {
		f.editID = sn.ID
		f.content.SetValue(sn.Content)
		f.typ.SetValue(sn.Type)
		f.key.SetValue(sn.Key)
	}
	f.setWidth(width)
	return f
}

func (f *snippetForm) setWidth(width int) {
	if width <= 4 {
		return
	}
	f.content.SetWidth(width - 4)
	f.typ.Width = width - 16
	f.key.Width = width - 16
}

// focusField moves focus to field i, wrapping around.
func (f *snippetForm) focusField(i int) tea.Cmd {
	f.focus = (i%fieldCount + fieldCount) % fieldCount
	f.content.Blur()
	f.typ.Blur()
	f.key.Blur()

	switch f.focus {
	case fieldType:
		return f.typ.Focus()
	case fieldKey:
		return f.key.Focus()
	default:
		return f.content.Focus()
	}
}

// update forwards msg to the focused field.
func (f snippetForm) update(msg tea.Msg) (snippetForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldType:
		f.typ, cmd = f.typ.Update(msg)
	case fieldKey:
		f.key, cmd = f.key.Update(msg)
	default:
		f.content, cmd = f.content.Update(msg)
	}
	return f, cmd
}

func (f snippetForm) values() (content, typ, key string) {
	return f.content.Value(), f.typ.Value(), f.key.Value()
}

func (f snippetForm) view() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	title := "New phrase"
	if f.editID != "" {
		title = "Edit phrase"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(labelStyle.Render("Content") + "\n")
	b.WriteString(f.content.View() + "\n\n")
	b.WriteString(labelStyle.Render("Category: ") + f.typ.View() + "\n")
	b.WriteString(labelStyle.Render("Keyword:  ") + f.key.View() + "\n")
	return b.String()
}

// settingsForm edits the header title and icon.
type settingsForm struct {
	title textinput.Model
	icons []model.TitleIcon
	icon  int
}

func newSettingsForm(s model.Settings) settingsForm {
	title := textinput.New()
	title.Placeholder = model.DefaultTitle
	title.CharLimit = 64
	title.SetValue(s.Title)

	icons := model.TitleIcons()
	f := settingsForm{title: title, icons: icons}
	for i, ic := range icons {
		if ic == s.Icon {
			f.icon = i
		}
	}
	return f
}

// cycleIcon moves the icon selection by delta, wrapping around.
func (f *settingsForm) cycleIcon(delta int) {
	if len(f.icons) == 0 {
		return
	}
	f.icon = (f.icon + delta + len(f.icons)) % len(f.icons)
}

func (f settingsForm) selected() model.TitleIcon {
	if len(f.icons) == 0 {
		return model.DefaultIcon
	}
	return f.icons[f.icon]
}

func (f settingsForm) view() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle := lipgloss.NewStyle().Bold(true).Underline(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n\n")
	b.WriteString(labelStyle.Render("Title: ") + f.title.View() + "\n\n")
	b.WriteString(labelStyle.Render("Icon:  "))
	for i, ic := range f.icons {
		glyph := fmt.Sprintf("%s %s", model.PresetIcons[ic], ic)
		if i == f.icon {
			glyph = activeStyle.Render("[" + glyph + "]")
		}
		b.WriteString(glyph + "  ")
	}
	b.WriteString("\n")
	return b.String()
}
