package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/clipbox/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByUpdated SortField = "updated"
	SortByCreated SortField = "created"
	SortByContent SortField = "content"
	SortByType    SortField = "type"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options (most recently updated first).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByUpdated,
		Order: SortDesc,
	}
}

// Sort sorts snippets in place. The sort is stable: equal keys keep their
// relative order in both directions.
func Sort(snippets []model.Snippet, opts SortOptions) {
	if len(snippets) == 0 {
		return
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		a, b := snippets[i], snippets[j]
		if opts.Order == SortDesc {
			a, b = b, a
		}

		switch opts.Field {
		case SortByCreated:
			return a.CreatedAt < b.CreatedAt
		case SortByContent:
			return strings.ToLower(a.Content) < strings.ToLower(b.Content)
		case SortByType:
			return strings.ToLower(a.Type) < strings.ToLower(b.Type)
		default:
			return a.UpdatedAt < b.UpdatedAt
		}
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "updated", "updatedat", "time", "u":
		return SortByUpdated, nil
	case "created", "createdat", "c":
		return SortByCreated, nil
	case "content", "text":
		return SortByContent, nil
	case "type", "category", "t":
		return SortByType, nil
	default:
		return SortByUpdated, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortDesc, nil
	}
}
