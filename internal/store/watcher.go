package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// rehydrateTimeout bounds a single reload.
const rehydrateTimeout = 5 * time.Second

// FileWatcher follows the snippet file and reloads the store when another
// process replaces it. Last write wins; no conflict detection is attempted.
type FileWatcher struct {
	fsw      *fsnotify.Watcher
	store    *Store
	path     string
	debounce time.Duration

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	closed  bool
}

// WatchOption configures a FileWatcher.
type WatchOption func(*FileWatcher)

// WithDebounce sets the settle time for event bursts.
func WithDebounce(d time.Duration) WatchOption {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// NewFileWatcher creates a watcher for the snippet file at path.
func NewFileWatcher(store *Store, path string, opts ...WatchOption) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		fsw:      fsw,
		store:    store,
		path:     path,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Start begins watching. Calling Start on a running watcher does nothing.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return nil
	}
	if fw.closed {
		return fsnotify.ErrClosed
	}

	// Atomic writes replace the file through a rename, so the directory is
	// watched rather than the file itself.
	if err := fw.fsw.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	fw.running = true
	fw.wg.Add(1)
	go fw.loop()
	return nil
}

func (fw *FileWatcher) loop() {
	defer fw.wg.Done()

	name := filepath.Base(fw.path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case event, ok := <-fw.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Remove) {
				slog.Debug("snippet file removed, keeping current list", "file", fw.path)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fw.rehydrate()

		case err, ok := <-fw.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)

		case <-fw.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (fw *FileWatcher) rehydrate() {
	slog.Debug("snippet file changed, reloading", "file", fw.path)

	ctx, cancel := context.WithTimeout(context.Background(), rehydrateTimeout)
	defer cancel()

	if err := fw.store.Hydrate(ctx); err != nil {
		slog.Warn("failed to reload snippets", "file", fw.path, "error", err)
	}
}

// Stop releases the watcher and waits for the loop to exit. It also cleans
// up a watcher whose Start failed, and is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	if fw.running {
		fw.running = false
		close(fw.done)
	}
	fw.mu.Unlock()

	err := fw.fsw.Close()
	fw.wg.Wait()
	return err
}
