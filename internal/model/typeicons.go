package model

import (
	"maps"
	"sort"
	"strings"
)

// UncategorizedLabel stands in for an empty category in exports and icon lookups.
const UncategorizedLabel = "uncategorized"

// PinIcon is the fallback icon for categories without a mapping.
const PinIcon = "📌"

// ClipboardType is the default category for snippets pasted from the clipboard.
const ClipboardType = "clipboard"

// TypeIcons maps a category name to a short icon string.
type TypeIcons map[string]string

// DefaultTypeIcons returns the built-in icons for common categories.
func DefaultTypeIcons() TypeIcons {
	return TypeIcons{
		UncategorizedLabel: "🗂️",
		"general":          "📝",
		"work":             "💼",
		"code":             "💻",
		"prompt":           "🤖",
		"email":            "✉️",
		"account":          "🔐",
		"link":             "🔗",
		ClipboardType:      "📋",
	}
}

// MergeTypeIcons overlays stored icons on top of the defaults.
// Blank keys and values in stored are ignored.
func MergeTypeIcons(stored TypeIcons) TypeIcons {
	merged := DefaultTypeIcons()
	for k, v := range stored {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		merged[k] = v
	}
	return merged
}

// Resolve returns the icon for a category, falling back to the pin icon.
func (t TypeIcons) Resolve(typ string) string {
	if typ == "" {
		typ = UncategorizedLabel
	}
	if icon, ok := t[typ]; ok && icon != "" {
		return icon
	}
	return PinIcon
}

// Clone returns a copy of the map.
func (t TypeIcons) Clone() TypeIcons {
	if t == nil {
		return TypeIcons{}
	}
	return maps.Clone(t)
}

// Types returns the mapped category names sorted alphabetically.
func (t TypeIcons) Types() []string {
	types := make([]string, 0, len(t))
	for k := range t {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
