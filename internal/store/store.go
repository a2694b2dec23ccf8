// Package store provides the snippet store and its persistence.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/clipbox/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a snippet was added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeUpdate indicates a snippet was edited.
	ChangeTypeUpdate
	// ChangeTypeDelete indicates a snippet was removed.
	ChangeTypeDelete
	// ChangeTypeRestore indicates a removed snippet was put back.
	ChangeTypeRestore
	// ChangeTypeImport indicates snippets were imported.
	ChangeTypeImport
	// ChangeTypeReload indicates the list was reloaded from storage.
	ChangeTypeReload
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type  ChangeType
	Count int
	ID    string
}

// ImportPolicy decides how imported snippets are merged with the current list.
type ImportPolicy string

const (
	// PolicyOverwrite replaces the whole list.
	PolicyOverwrite ImportPolicy = "overwrite"
	// PolicyAppend puts imported snippets ahead of the existing ones.
	PolicyAppend ImportPolicy = "append"
)

// ParseImportPolicy parses a policy name.
func ParseImportPolicy(s string) (ImportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite", "replace", "o":
		return PolicyOverwrite, nil
	case "append", "merge", "a":
		return PolicyAppend, nil
	default:
		return "", fmt.Errorf("invalid import policy: %q (use overwrite or append)", s)
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKey overrides the storage key holding the snippet list.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// Store holds the in-memory snippet list and writes it through to a KV after
// every mutation. A mutation is committed in memory only after the write
// succeeds, so a failed write leaves the list untouched.
type Store struct {
	mu       sync.RWMutex
	snippets []model.Snippet
	index    map[string]int // id -> slice index

	kv          KV
	key         string
	now         func() time.Time
	initialized bool

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store backed by kv.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		snippets:    make([]model.Snippet, 0),
		index:       make(map[string]int),
		kv:          kv,
		key:         SnippetsKey,
		now:         time.Now,
		subscribers: make([]chan ChangeEvent, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the snippet list from storage and replaces the in-memory list.
// Records without an id or content, and repeated ids, are skipped.
func (s *Store) Load(ctx context.Context) ([]model.Snippet, error) {
	var stored []model.Snippet
	found, err := s.kv.Get(ctx, s.key, &stored)
	if err != nil {
		return nil, fmt.Errorf("load snippets: %w", err)
	}

	loaded := make([]model.Snippet, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, sn := range stored {
		if err := sn.Validate(); err != nil {
			slog.Warn("skipping invalid stored snippet", "id", sn.ID, "error", err)
			continue
		}
		if seen[sn.ID] {
			slog.Warn("skipping duplicate stored snippet", "id", sn.ID)
			continue
		}
		seen[sn.ID] = true
		loaded = append(loaded, sn)
	}

	s.mu.Lock()
	s.setLocked(loaded)
	s.initialized = found
	s.mu.Unlock()

	return copySnippets(loaded), nil
}

// Initialized reports whether the snippet key existed at the last Load.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Save persists the given list and makes it the in-memory list.
// Repeated ids are reassigned so ids stay unique.
func (s *Store) Save(ctx context.Context, snippets []model.Snippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	next, err := s.uniqueIDs(copySnippets(snippets), nil)
	if err != nil {
		return err
	}
	return s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeImport, Count: len(next)})
}

// Add prepends a new snippet and persists the list.
func (s *Store) Add(ctx context.Context, content, typ, key string) (model.Snippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Snippet{}, ErrStoreClosed
	}

	sn, err := model.NewSnippet(content, typ, key, s.now())
	if err != nil {
		return model.Snippet{}, err
	}
	for s.hasID(sn.ID) {
		if sn.ID, err = model.NewID(s.now()); err != nil {
			return model.Snippet{}, err
		}
	}

	next := make([]model.Snippet, 0, len(s.snippets)+1)
	next = append(next, *sn)
	next = append(next, s.snippets...)

	if err := s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeAdd, Count: 1, ID: sn.ID}); err != nil {
		return model.Snippet{}, err
	}
	return *sn, nil
}

// Update replaces content, type and key of the snippet with the given id and
// refreshes its UpdatedAt. The second return value is false when the id is
// unknown, in which case nothing is changed.
func (s *Store) Update(ctx context.Context, id, content, typ, key string) (model.Snippet, bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Snippet{}, false, model.ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Snippet{}, false, ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists {
		return model.Snippet{}, false, nil
	}

	next := copySnippets(s.snippets)
	sn := &next[idx]
	sn.Content = content
	sn.Type = strings.TrimSpace(typ)
	sn.Key = strings.TrimSpace(key)
	sn.Touch(s.now())

	if err := s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeUpdate, Count: 1, ID: id}); err != nil {
		return model.Snippet{}, false, err
	}
	return *sn, true, nil
}

// Remove detaches the snippet with the given id and returns it so the caller
// can place it in the undo ring. The second return value is false when the id
// is unknown.
func (s *Store) Remove(ctx context.Context, id string) (model.Snippet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Snippet{}, false, ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists {
		return model.Snippet{}, false, nil
	}

	removed := s.snippets[idx]
	next := make([]model.Snippet, 0, len(s.snippets)-1)
	next = append(next, s.snippets[:idx]...)
	next = append(next, s.snippets[idx+1:]...)

	if err := s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeDelete, Count: 1, ID: id}); err != nil {
		return model.Snippet{}, false, err
	}
	return removed, true, nil
}

// Restore appends a previously removed snippet. If its id has been taken in
// the meantime a fresh id is assigned. Returns the snippet as stored.
func (s *Store) Restore(ctx context.Context, sn model.Snippet) (model.Snippet, error) {
	if strings.TrimSpace(sn.Content) == "" {
		return model.Snippet{}, model.ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Snippet{}, ErrStoreClosed
	}

	if sn.ID == "" || s.hasID(sn.ID) {
		id, err := model.NewID(s.now())
		if err != nil {
			return model.Snippet{}, err
		}
		sn.ID = id
	}

	next := make([]model.Snippet, 0, len(s.snippets)+1)
	next = append(next, s.snippets...)
	next = append(next, sn)

	if err := s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeRestore, Count: 1, ID: sn.ID}); err != nil {
		return model.Snippet{}, err
	}
	return sn, nil
}

// Import merges records into the list according to policy and returns the
// number of records imported. Ids colliding with kept snippets or with each
// other are reassigned.
func (s *Store) Import(ctx context.Context, records []model.Snippet, policy ImportPolicy) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var kept []model.Snippet
	switch policy {
	case PolicyOverwrite:
	case PolicyAppend:
		kept = s.snippets
	default:
		return 0, fmt.Errorf("invalid import policy: %q", policy)
	}

	taken := make(map[string]bool, len(kept))
	for _, sn := range kept {
		taken[sn.ID] = true
	}

	imported, err := s.uniqueIDs(copySnippets(records), taken)
	if err != nil {
		return 0, err
	}

	next := make([]model.Snippet, 0, len(imported)+len(kept))
	next = append(next, imported...)
	next = append(next, kept...)

	if err := s.commitLocked(ctx, next, ChangeEvent{Type: ChangeTypeImport, Count: len(imported)}); err != nil {
		return 0, err
	}
	return len(imported), nil
}

// All returns a copy of the snippets in stored order.
func (s *Store) All() []model.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnippets(s.snippets)
}

// GetByID returns the snippet with the given id, or nil.
func (s *Store) GetByID(id string) *model.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		sn := s.snippets[idx]
		return &sn
	}
	return nil
}

// Count returns the number of snippets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snippets)
}

// Hydrate reloads the list from storage, picking up writes made by another instance.
func (s *Store) Hydrate(ctx context.Context) error {
	loaded, err := s.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.notifyChange(ChangeEvent{Type: ChangeTypeReload, Count: len(loaded)})
	s.mu.Unlock()
	return nil
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

// commitLocked persists next and, on success, swaps it in. Caller holds s.mu.
func (s *Store) commitLocked(ctx context.Context, next []model.Snippet, event ChangeEvent) error {
	if err := s.kv.Set(ctx, s.key, next); err != nil {
		return fmt.Errorf("save snippets: %w", err)
	}
	s.setLocked(next)
	s.initialized = true
	s.notifyChange(event)
	return nil
}

// setLocked replaces the list and rebuilds the index. Caller holds s.mu.
func (s *Store) setLocked(snippets []model.Snippet) {
	s.snippets = snippets
	s.index = make(map[string]int, len(snippets))
	for i, sn := range snippets {
		s.index[sn.ID] = i
	}
}

func (s *Store) hasID(id string) bool {
	_, exists := s.index[id]
	return exists
}

// uniqueIDs assigns fresh ids to records whose id is empty, already in taken,
// or repeated within records.
func (s *Store) uniqueIDs(records []model.Snippet, taken map[string]bool) ([]model.Snippet, error) {
	if taken == nil {
		taken = make(map[string]bool, len(records))
	}
	for i := range records {
		for records[i].ID == "" || taken[records[i].ID] {
			id, err := model.NewID(s.now())
			if err != nil {
				return nil, err
			}
			records[i].ID = id
		}
		taken[records[i].ID] = true
	}
	return records, nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

func copySnippets(snippets []model.Snippet) []model.Snippet {
	out := make([]model.Snippet, len(snippets))
	copy(out, snippets)
	return out
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
