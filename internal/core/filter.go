// Package core provides filtering, sorting, lookup and color logic.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/clipbox/internal/model"
)

// ViewOptions selects which snippets are shown.
type ViewOptions struct {
	Query string // Case-insensitive substring over content, type and key
	Type  string // Exact category match (empty = all)
}

// View derives the displayed list: snippets matching opts, most recently
// updated first. Ties keep their original relative order. The input is not
// modified. An empty result is a normal outcome.
func View(snippets []model.Snippet, opts ViewOptions) []model.Snippet {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	result := make([]model.Snippet, 0, len(snippets))
	for _, sn := range snippets {
		if opts.Type != "" && sn.Type != opts.Type {
			continue
		}
		if query != "" && !matchesQuery(sn, query) {
			continue
		}
		result = append(result, sn)
	}

	Sort(result, DefaultSortOptions())
	return result
}

// matchesQuery reports whether the lower-cased query occurs in content, type or key.
func matchesQuery(sn model.Snippet, query string) bool {
	return strings.Contains(strings.ToLower(sn.Content), query) ||
		strings.Contains(strings.ToLower(sn.Type), query) ||
		strings.Contains(strings.ToLower(sn.Key), query)
}

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: id, content, type, key, created, updated
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex  *regexp.Regexp // Compiled regex for ~= operator
	cutoff time.Time      // now - duration for created/updated
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: id, content, type, key, created, updated
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "type=work" - exact category match
//   - "content~password" - content contains "password"
//   - "key!=" - snippets that have a keyword
//   - "updated>7d" - touched within the last week
//   - "content~=(?i)^dear" - content matches regex
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "type=work" or "content~hello"
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}

			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}

			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init normalizes the field and pre-parses the value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "id":
	case "content", "text", "body":
		c.Field = "content"
	case "type", "category", "cat":
		c.Field = "type"
	case "key", "keyword":
		c.Field = "key"
	case "created", "created_at", "createdat":
		c.Field = "created"
	case "updated", "updated_at", "updatedat", "time", "ts":
		c.Field = "updated"
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Field == "created" || c.Field == "updated" {
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", c.Field, err)
		}
		c.cutoff = time.Now().Add(-dur)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if a snippet matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(sn model.Snippet) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(sn) {
			return false
		}
	}
	return true
}

// Match tests if a snippet matches this single condition.
func (c *FilterCondition) Match(sn model.Snippet) bool {
	switch c.Field {
	case "id":
		return c.matchString(sn.ID)
	case "content":
		return c.matchString(sn.Content)
	case "type":
		return c.matchString(sn.Type)
	case "key":
		return c.matchString(sn.Key)
	case "created":
		return c.matchTime(sn.CreatedTime())
	case "updated":
		return c.matchTime(sn.UpdatedTime())
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchTime compares a timestamp against now-duration.
// "updated>7d" reads as "updated after seven days ago".
func (c *FilterCondition) matchTime(fieldValue time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return fieldValue.After(c.cutoff)
	case FilterOpLess:
		return fieldValue.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !fieldValue.Before(c.cutoff)
	case FilterOpLessEq:
		return !fieldValue.After(c.cutoff)
	default:
		return false
	}
}

// FilterWithExpr filters snippets using a filter expression.
func FilterWithExpr(snippets []model.Snippet, expr *FilterExpr) []model.Snippet {
	if expr == nil || len(expr.Conditions) == 0 {
		return snippets
	}

	result := make([]model.Snippet, 0, len(snippets))
	for _, sn := range snippets {
		if expr.Match(sn) {
			result = append(result, sn)
		}
	}
	return result
}
