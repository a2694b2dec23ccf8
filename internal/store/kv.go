package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage keys. They match the keys used by the browser extension so an
// exported storage dump can be dropped into the data directory as-is.
const (
	SnippetsKey  = "quickPhrases"
	SettingsKey  = "clipbox_settings"
	TypeIconsKey = "clipbox_type_icons"
)

// KV is a persistent key-value store holding JSON-compatible values.
// There are no transactions across keys.
type KV interface {
	// Get decodes the value stored under key into dst.
	// Returns false if the key has never been written.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value any) error
}

// ErrInvalidKey is returned for keys that cannot be mapped to a file name.
var ErrInvalidKey = errors.New("invalid storage key")

// FileKV implements KV with one JSON file per key inside a directory.
type FileKV struct {
	mu  sync.RWMutex
	dir string
}

// NewFileKV creates a FileKV rooted at dir. The directory is created on first write.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

// Dir returns the directory holding the key files.
func (f *FileKV) Dir() string {
	return f.dir
}

// Path returns the file backing key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Get reads and decodes the value stored under key.
func (f *FileKV) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validKey(key); err != nil {
		return false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set encodes value and writes it atomically via a temp file.
func (f *FileKV) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", f.dir, err)
	}

	path := f.Path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// MemoryKV implements KV in memory. Used by tests and when no data directory is available.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte

	// FailSet, when non-nil, is returned by every Set call.
	FailSet error
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

// Get decodes the value stored under key.
func (m *MemoryKV) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	data, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value.
func (m *MemoryKV) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.FailSet != nil {
		return m.FailSet
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	m.mu.Lock()
	m.values[key] = data
	m.mu.Unlock()
	return nil
}

// Raw returns the stored JSON for key.
func (m *MemoryKV) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.values[key]
	return data, ok
}

// SetRaw stores pre-encoded JSON under key.
func (m *MemoryKV) SetRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
}
