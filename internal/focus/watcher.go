package focus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/777genius/claude-notifier/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher invalidates a Store when its file changes on disk.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory containing the store's file. Watching the
// directory (not the file) keeps working across atomic rename-on-save.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{store: store, watcher: fw, debounce: debounce}, nil
}

// OnReload registers a callback run after each invalidation.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	target := filepath.Base(w.store.Path())

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logging.Debug("focus mapping event: %s", ev)
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("focus mapping watcher: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.store.Invalidate()
		logging.Info("focus mapping changed, reloading %s", w.store.Path())

		w.mu.Lock()
		fn := w.onReload
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}
