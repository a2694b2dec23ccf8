// Package output provides output formatters for snippet lists.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/clipbox/internal/model"
)

// Formatter formats snippets for output.
type Formatter interface {
	// Format writes formatted snippets to the writer.
	Format(w io.Writer, snippets []model.Snippet) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ParseFormatType parses a format name.
func ParseFormatType(s string) (FormatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dmenu", "rofi", "fuzzel":
		return FormatDmenu, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "plain", "", "text":
		return FormatPlain, nil
	case "ids", "id":
		return FormatIDs, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatIDs:
		return idsFormatter{}
	case FormatDmenu:
		fallthrough
	default:
		return NewDmenuFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string          // Custom template for dmenu/plain format
	ShowIndex      bool            // Show 1-based index prefix
	ShowTime       bool            // Show relative time
	ShowType       bool            // Show category with its icon
	ShowKey        bool            // Show keyword
	ContentMaxLen  int             // Maximum content length (0 = unlimited)
	Separator      string          // Field separator for dmenu format
	IncludeNewline bool            // Keep newlines in content (default: replace with space)
	Icons          model.TypeIcons // Category icons; nil uses the defaults
}

// DefaultFormatterOptions returns sensible defaults for dmenu output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:      true,
		ShowTime:       false,
		ShowType:       true,
		ShowKey:        true,
		ContentMaxLen:  80,
		Separator:      " | ",
		IncludeNewline: false,
	}
}

// icons returns the configured icons or the defaults.
func (o FormatterOptions) icons() model.TypeIcons {
	if o.Icons == nil {
		return model.DefaultTypeIcons()
	}
	return o.Icons
}
