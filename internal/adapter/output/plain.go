package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/clipbox/internal/model"
)

// PlainFormatter formats snippets as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes snippets as plain text.
func (f *PlainFormatter) Format(w io.Writer, snippets []model.Snippet) error {
	for i := range snippets {
		if err := f.formatSnippet(w, i+1, &snippets[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatSnippet formats a single snippet.
func (f *PlainFormatter) formatSnippet(w io.Writer, index int, sn *model.Snippet) error {
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(index, sn, f.opts)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	// Header line, then the content indented
	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}

	if f.opts.ShowType {
		sb.WriteString(fmt.Sprintf("%s %s", f.opts.icons().Resolve(sn.Type), sn.TypeLabel()))
	}

	if f.opts.ShowKey && sn.Key != "" {
		sb.WriteString(fmt.Sprintf(" #%s", sn.Key))
	}

	if f.opts.ShowTime {
		sb.WriteString(fmt.Sprintf(" (%s)", relativeTime(sn.UpdatedAt)))
	}

	sb.WriteString("\n")

	content := sn.Content
	if !f.opts.IncludeNewline {
		content = sanitizeContent(content, f.opts.ContentMaxLen, false)
	}
	for line := range strings.SplitSeq(content, "\n") {
		sb.WriteString("    " + line + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from a snippet.
func FormatField(sn *model.Snippet, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return sn.ID
	case "type", "category":
		return sn.Type
	case "key", "keyword":
		return sn.Key
	case "created", "created_at":
		return sn.CreatedTime().UTC().Format("2006-01-02T15:04:05Z07:00")
	case "updated", "updated_at":
		return sn.UpdatedTime().UTC().Format("2006-01-02T15:04:05Z07:00")
	case "all", "full":
		return fmt.Sprintf("[%s] %s", sn.TypeLabel(), sn.Content)
	default:
		return sn.Content
	}
}
