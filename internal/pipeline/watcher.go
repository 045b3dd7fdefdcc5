package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/logging"
)

// WatcherStats counts what a watcher has seen and done
type WatcherStats struct {
	Events        int
	Runs          int
	Errors        int
	LastEventPath string
}

// Watcher re-runs an action when partition files under a directory change.
// Bursts of events are collapsed: the action runs once the tree has been
// quiet for the debounce interval.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	root     string
	ignore   map[string]bool
	debounce time.Duration
	action   func(ctx context.Context) error
	logger   *zap.Logger

	pending time.Time // time of the latest unprocessed event
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stats   WatcherStats
}

// NewWatcher watches root recursively. Changes to files in ignore (such as
// the export's own output) never trigger the action.
func NewWatcher(root string, debounce time.Duration, action func(ctx context.Context) error, logger *zap.Logger, ignore ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	skip := make(map[string]bool, len(ignore))
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	return &Watcher{
		watcher:  fw,
		root:     root,
		ignore:   skip,
		debounce: debounce,
		action:   action,
		logger:   logging.OrNop(logger),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers every directory under root and begins processing events
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		w.watcher.Close()
		close(w.doneCh)
		return err
	}
	w.logger.Info("watching partitions", zap.String("dir", w.root), zap.Duration("debounce", w.debounce))

	go w.run(ctx)
	return nil
}

// Stop ends event processing and releases the underlying watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("close watcher", zap.Error(err))
	}
}

// Done is closed once the event loop has exited
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		// new subdirectories are watched too; Add fails harmlessly on files
		_ = w.watcher.Add(event.Name)
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if abs, err := filepath.Abs(event.Name); err == nil && w.ignore[abs] {
		return
	}

	w.logger.Debug("partition changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	err := w.action(ctx)

	w.mu.Lock()
	w.stats.Runs++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("rebuild failed", zap.Error(err))
	}
}

// Stats returns a copy of the counters
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
