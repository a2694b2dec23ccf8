// Package codec converts snippets to and from the JSON exchange formats.
//
// Exports always use the grouped format: one entry per category carrying the
// category icon and its snippets. Imports accept the grouped format and the
// older flat list of {content, type} records.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/clipbox/internal/model"
)

// Group is one category in the grouped exchange format.
type Group struct {
	Type string `json:"type" yaml:"type"`
	Icon string `json:"icon" yaml:"icon"`
	Data []Item `json:"data" yaml:"data"`
}

// Item is a snippet inside a Group.
type Item struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
	Key     string `json:"key" yaml:"key"`
}

// ExportFormat selects the encoding of an export document.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ParseExportFormat parses an export format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	if f == ExportYAML {
		return "yaml"
	}
	return "json"
}

// Export groups snippets by category. Groups appear in the order their
// category is first seen, and items keep their list order. The empty
// category is written as the uncategorized label. Each group carries the
// icon resolved from icons at the time of the call.
func Export(snippets []model.Snippet, icons model.TypeIcons) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for _, sn := range snippets {
		label := sn.TypeLabel()
		idx, ok := index[label]
		if !ok {
			idx = len(groups)
			index[label] = idx
			groups = append(groups, Group{
				Type: label,
				Icon: icons.Resolve(sn.Type),
				Data: make([]Item, 0, 1),
			})
		}
		groups[idx].Data = append(groups[idx].Data, Item{
			ID:      sn.ID,
			Content: sn.Content,
			Key:     sn.Key,
		})
	}

	return groups
}

// Count returns the number of items across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Data)
	}
	return n
}

// Encode writes groups as indented JSON.
func Encode(w io.Writer, groups []Group) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// EncodeYAML writes groups as YAML.
func EncodeYAML(w io.Writer, groups []Group) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}

// EncodeAs writes groups in the given format.
func EncodeAs(w io.Writer, groups []Group, format ExportFormat) error {
	if format == ExportYAML {
		return EncodeYAML(w, groups)
	}
	return Encode(w, groups)
}

// ExportFilename returns the file name for an export taken at t, e.g.
// clipbox_2024-05-01T12-00-00-000Z.json.
func ExportFilename(t time.Time, format ExportFormat) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "clipbox_" + ts + "." + format.Extension()
}
