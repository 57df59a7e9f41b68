// Package watch reports changes to model files so the viewer can reload
// them.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/logger"
)

// Watcher collapses bursts of file events into single reload requests.
// Folders are watched rather than files, since editors often save by
// renaming a temporary file over the original.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	reloads  chan string

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// New creates a watcher that waits debounce after the last event on a file
// before requesting a reload.
func New(debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		reloads:  make(chan string, 1),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[abs] = true
	if w.dirs[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

// Reloads delivers the path of each changed file. A request that finds the
// channel full is dropped; the pending one already causes a reload.
func (w *Watcher) Reloads() <-chan string {
	return w.reloads
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.watched(event) {
				continue
			}
			pending = event.Name
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		case <-timer.C:
			select {
			case w.reloads <- pending:
				logger.Debug("reload requested", zap.String("file", pending))
			default:
			}
		}
	}
}

func (w *Watcher) watched(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Close stops watching. Run returns once the event channel closes.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
