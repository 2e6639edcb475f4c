// Package watch monitors a directory for incoming .php containers and hands
// settled files to a recovery callback. Editors and uploaders emit bursts of
// Write events for a single save, so events are debounced before dispatch.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler receives the path of a file once its events have settled.
type Handler func(ctx context.Context, path string)

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	Dispatched    int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches a directory for new or modified .php files.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New creates a Watcher for dir. The handler is invoked once per settled file.
func New(dir string, handler Handler, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:     fw,
		dir:         dir,
		handler:     handler,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Warn("watch: could not create directory", zap.String("dir", w.dir), zap.Error(err))
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
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
		w.logger.Error("watch: close failed", zap.Error(err))
	}
}

// Running reports whether the event loop is active.
func (w *Watcher) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a snapshot of watcher activity.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
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
			w.dispatchSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".php") {
		return
	}
	// Recovered outputs land next to their source; skip them to avoid loops.
	if strings.HasSuffix(event.Name, "_recovered.php") {
		return
	}

	created := event.Op&fsnotify.Create != 0
	written := event.Op&fsnotify.Write != 0
	if !created && !written {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if created {
		w.stats.FilesCreated++
	} else {
		w.stats.FilesModified++
	}
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
}

func (w *Watcher) dispatchSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		w.logger.Info("dispatching settled file", zap.String("file", filepath.Base(path)))
		w.mu.Lock()
		w.stats.Dispatched++
		w.mu.Unlock()
		w.handler(ctx, path)
	}
}
