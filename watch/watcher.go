// Package watch reports changes to repository seed files.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 16

	// DefaultDebounceDelay is used when no delay is configured.
	DefaultDebounceDelay = 500 * time.Millisecond
)

// Operation indicates the type of file change.
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is a settled change to one watched file.
type Event struct {
	Path      string
	Operation Operation
}

// FileWatcher watches individual files. Parent directories are watched
// rather than the files themselves so that editors that save by renaming a
// temporary file over the original are still seen.
type FileWatcher struct {
	files    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events        chan Event
	droppedEvents atomic.Int64
}

// NewFileWatcher creates a watcher for the given files. A zero debounce uses
// DefaultDebounceDelay.
func NewFileWatcher(files []string, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FileWatcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan Event, eventChannelBuffer),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		if content, err := os.ReadFile(abs); err == nil {
			w.hashes[abs] = contentHash(content)
		}
	}
	return w, nil
}

// Events returns the channel of settled changes. It is closed when the
// watcher stops.
func (w *FileWatcher) Events() <-chan Event {
	return w.events
}

// Start begins watching. Events stop when ctx is done or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"files", len(w.files),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *FileWatcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *FileWatcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			w.pendingMu.Lock()
			w.pending[filepath.Clean(event.Name)] |= event.Op
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending turns accumulated changes into events. Writes that leave the
// content unchanged are dropped.
func (w *FileWatcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path := range toProcess {
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			w.hashMu.Lock()
			_, had := w.hashes[path]
			delete(w.hashes, path)
			w.hashMu.Unlock()
			if had {
				w.send(Event{Path: path, Operation: OpDelete})
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read watched file",
				"path", path,
				"error", err)
			continue
		}

		hash := contentHash(content)
		w.hashMu.Lock()
		old, had := w.hashes[path]
		w.hashes[path] = hash
		w.hashMu.Unlock()

		switch {
		case !had:
			w.send(Event{Path: path, Operation: OpCreate})
		case old != hash:
			w.send(Event{Path: path, Operation: OpModify})
		}
	}
}

func (w *FileWatcher) send(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
