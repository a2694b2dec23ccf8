package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/clipbox/internal/model"
)

// YAMLFormatter formats snippets as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// yamlSnippet mirrors model.Snippet with YAML field names.
type yamlSnippet struct {
	ID        string `yaml:"id"`
	Content   string `yaml:"content"`
	Type      string `yaml:"type"`
	Key       string `yaml:"key,omitempty"`
	CreatedAt int64  `yaml:"createdAt"`
	UpdatedAt int64  `yaml:"updatedAt"`
}

// Format writes snippets as YAML.
func (f *YAMLFormatter) Format(w io.Writer, snippets []model.Snippet) error {
	out := make([]yamlSnippet, 0, len(snippets))
	for _, sn := range snippets {
		out = append(out, yamlSnippet(sn))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
