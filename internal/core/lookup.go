package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/clipbox/internal/model"
)

// LookupByID finds a snippet by its ID.
// Returns nil if not found.
func LookupByID(snippets []model.Snippet, id string) *model.Snippet {
	for i := range snippets {
		if snippets[i].ID == id {
			return &snippets[i]
		}
	}
	return nil
}

// LookupByIndex finds a snippet by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(snippets []model.Snippet, index int) *model.Snippet {
	idx := index - 1
	if idx < 0 || idx >= len(snippets) {
		return nil
	}
	return &snippets[idx]
}

// LookupByKey finds the most recently updated snippet with the given keyword.
func LookupByKey(snippets []model.Snippet, key string) *model.Snippet {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	var best *model.Snippet
	for i := range snippets {
		if !strings.EqualFold(snippets[i].Key, key) {
			continue
		}
		if best == nil || snippets[i].UpdatedAt > best.UpdatedAt {
			best = &snippets[i]
		}
	}
	return best
}

// UniqueTypes returns the sorted, non-empty categories in use.
func UniqueTypes(snippets []model.Snippet) []string {
	seen := make(map[string]bool)
	var types []string

	for _, sn := range snippets {
		if sn.Type != "" && !seen[sn.Type] {
			seen[sn.Type] = true
			types = append(types, sn.Type)
		}
	}

	sort.Strings(types)
	return types
}

// TypeCounts returns the number of snippets per category.
// Empty categories are counted under the uncategorized label.
func TypeCounts(snippets []model.Snippet) map[string]int {
	counts := make(map[string]int)
	for _, sn := range snippets {
		counts[sn.TypeLabel()]++
	}
	return counts
}
