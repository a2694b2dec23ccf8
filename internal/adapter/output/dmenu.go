package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/clipbox/internal/model"
)

// DmenuFormatter formats snippets for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes snippets in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, snippets []model.Snippet) error {
	for i := range snippets {
		line := f.formatLine(i+1, &snippets[i])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single snippet line.
func (f *DmenuFormatter) formatLine(index int, sn *model.Snippet) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, sn, f.opts)); err == nil {
			return sanitizeContent(buf.String(), 0, false)
		}
	}

	// Default format: index | icon type | key | content | time
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(index))
	}

	if f.opts.ShowType {
		parts = append(parts, f.opts.icons().Resolve(sn.Type)+" "+sn.TypeLabel())
	}

	if f.opts.ShowKey && sn.Key != "" {
		parts = append(parts, "#"+sn.Key)
	}

	parts = append(parts, sanitizeContent(sn.Content, f.opts.ContentMaxLen, false))

	if f.opts.ShowTime {
		parts = append(parts, relativeTime(sn.UpdatedAt))
	}

	return strings.Join(parts, sep)
}

// ParseSelection extracts the snippet reference from a dmenu selection.
// Input could be a full line such as "3 | 💼 work | Dear Sir" or a bare
// index or id. Returns the index when the first field is a positive integer,
// otherwise the trimmed selection as an id.
func ParseSelection(selection string) (int, string) {
	selection = strings.TrimSpace(selection)

	first, _, _ := strings.Cut(selection, "|")
	first = strings.TrimSpace(first)
	if idx, err := strconv.Atoi(first); err == nil && idx > 0 {
		return idx, ""
	}

	return 0, selection
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Snippet      *model.Snippet
	Icon         string
	RelativeTime string
}

func newTemplateData(index int, sn *model.Snippet, opts FormatterOptions) templateData {
	return templateData{
		Index:        index,
		Snippet:      sn,
		Icon:         opts.icons().Resolve(sn.Type),
		RelativeTime: relativeTime(sn.UpdatedAt),
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return truncate(s, maxLen)
		},
		"reltime": func(ms int64) string {
			return relativeTime(ms)
		},
		"oneline": func(s string) string {
			return sanitizeContent(s, 0, false)
		},
	}
}

// relativeTime returns a compact relative time for a Unix millisecond timestamp.
func relativeTime(ms int64) string {
	if ms == 0 {
		return "unknown"
	}

	d := time.Since(time.UnixMilli(ms))

	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// sanitizeContent cleans up content for single-line display.
func sanitizeContent(content string, maxLen int, includeNewline bool) string {
	if !includeNewline {
		content = strings.ReplaceAll(content, "\r", "")
		content = strings.ReplaceAll(content, "\n", " ")
		content = strings.ReplaceAll(content, "\t", " ")
	}

	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	return truncate(strings.TrimSpace(content), maxLen)
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
