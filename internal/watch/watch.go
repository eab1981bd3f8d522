// Package watch reports on-disk edits to the script open in the editor.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scriptsmith/internal/logging"
)

// Change is a settled edit of the watched file.
type Change struct {
	Path    string
	Content string
	Time    time.Time
}

// FileWatcher watches one file. The parent directory is watched so editors that
// save by renaming a temp file over the original are still seen.
type FileWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	debounceDur time.Duration
	pending     time.Time // zero when nothing is pending
	known       string    // last content delivered or seeded
	changes     chan Change
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool
}

// New creates a watcher for path. Rapid successive writes within debounce are
// reported once.
func New(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &FileWatcher{
		watcher:     w,
		path:        abs,
		dir:         filepath.Dir(abs),
		debounceDur: debounce,
		changes:     make(chan Change, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

// Changes delivers settled edits. It is closed when the watcher stops.
func (fw *FileWatcher) Changes() <-chan Change { return fw.changes }

// Seed records content already known to the caller (for example a file it just
// wrote) so an event carrying that same content is not reported.
func (fw *FileWatcher) Seed(content string) {
	fw.mu.Lock()
	fw.known = content
	fw.mu.Unlock()
}

// Start begins watching. It is non-blocking.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running || fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(fw.dir); err != nil {
		logging.Get(logging.CategoryWatch).Warn("FileWatcher: failed to watch %s: %v", fw.dir, err)
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return err
	}
	logging.Watch("FileWatcher: watching %s", fw.path)

	go fw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine. It is idempotent.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return
	}
	wasRunning := fw.running
	fw.running = false
	fw.stopped = true
	fw.mu.Unlock()

	close(fw.stopCh)
	if wasRunning {
		<-fw.doneCh
	} else {
		close(fw.changes)
	}
	if err := fw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("FileWatcher: error closing watcher: %v", err)
	}
	logging.Watch("FileWatcher: stopped")
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)
	defer close(fw.changes)

	ticker := time.NewTicker(fw.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("FileWatcher error: %v", err)

		case <-ticker.C:
			if c, ok := fw.settled(); ok {
				select {
				case fw.changes <- c:
				case <-fw.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	logging.Watch("FileWatcher: %s %s", event.Op, event.Name)

	fw.mu.Lock()
	fw.pending = time.Now()
	fw.mu.Unlock()
}

// settled reads the file once the debounce window has passed since the last event.
func (fw *FileWatcher) settled() (Change, bool) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.pending.IsZero() || time.Since(fw.pending) < fw.debounceDur {
		return Change{}, false
	}
	fw.pending = time.Time{}

	data, err := os.ReadFile(fw.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Get(logging.CategoryWatch).Error("FileWatcher: failed to read %s: %v", fw.path, err)
		}
		return Change{}, false
	}
	content := string(data)
	if content == fw.known {
		return Change{}, false
	}
	fw.known = content
	return Change{Path: fw.path, Content: content, Time: time.Now()}, true
}
