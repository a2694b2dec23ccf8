package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/clipbox/internal/model"
)

// JSONFormatter formats snippets as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes snippets as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, snippets []model.Snippet) error {
	if snippets == nil {
		snippets = []model.Snippet{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(snippets)
}

// FormatSingle writes a single snippet as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, sn *model.Snippet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(sn)
}
