// Package model defines the core data structures for clipbox.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// Snippet is a single stored quick phrase.
// Timestamps are Unix milliseconds so the stored list stays compatible with
// the browser-extension storage shape.
type Snippet struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Validation errors.
var (
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
)

// NewID generates a new ULID string.
func NewID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// NewSnippet creates a snippet with a generated ID and both timestamps set to now.
// Content, type and key are trimmed; blank content is rejected.
func NewSnippet(content, typ, key string, now time.Time) (*Snippet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	id, err := NewID(now)
	if err != nil {
		return nil, err
	}

	ms := now.UnixMilli()
	return &Snippet{
		ID:        id,
		Content:   content,
		Type:      strings.TrimSpace(typ),
		Key:       strings.TrimSpace(key),
		CreatedAt: ms,
		UpdatedAt: ms,
	}, nil
}

// Validate checks that the snippet has all required fields.
func (s *Snippet) Validate() error {
	if s.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(s.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Touch moves UpdatedAt forward to now. If the clock has not advanced past the
// previous value, UpdatedAt is bumped by one millisecond so it always grows.
func (s *Snippet) Touch(now time.Time) {
	ms := now.UnixMilli()
	if ms <= s.UpdatedAt {
		ms = s.UpdatedAt + 1
	}
	s.UpdatedAt = ms
}

// CreatedTime returns CreatedAt as a time.Time.
func (s *Snippet) CreatedTime() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// UpdatedTime returns UpdatedAt as a time.Time.
func (s *Snippet) UpdatedTime() time.Time {
	return time.UnixMilli(s.UpdatedAt)
}

// RelativeTime returns a human-readable age of the last update, e.g. "3 minutes ago".
func (s *Snippet) RelativeTime() string {
	if s.UpdatedAt == 0 {
		return "unknown"
	}
	return humanize.Time(s.UpdatedTime())
}

// ContentTruncated returns the content collapsed to one line and truncated to maxLen runes.
func (s *Snippet) ContentTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	content := []rune(strings.Join(strings.Fields(s.Content), " "))
	if len(content) <= maxLen {
		return string(content)
	}
	if maxLen <= 3 {
		return string(content[:maxLen])
	}
	return string(content[:maxLen-3]) + "..."
}

// TypeLabel returns the category, or the uncategorized label when it is empty.
func (s *Snippet) TypeLabel() string {
	if s.Type == "" {
		return UncategorizedLabel
	}
	return s.Type
}

// Clone returns a copy of the snippet.
func (s *Snippet) Clone() *Snippet {
	clone := *s
	return &clone
}
