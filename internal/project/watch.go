package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/showcase/internal/debounce"
	"github.com/fyrsmithlabs/showcase/internal/logging"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize catalog watcher")

// DefaultReloadDelay coalesces the burst of events editors emit on save.
const DefaultReloadDelay = 100 * time.Millisecond

// CatalogWatcher reloads a catalog file into a Manager whenever it changes.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file through a rename keep being observed.
type CatalogWatcher struct {
	path    string
	dims    Dimensions
	manager *Manager
	logger  *logging.Logger
	watcher *fsnotify.Watcher
	reload  *debounce.Debouncer

	ctx      context.Context
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewCatalogWatcher creates a watcher for the catalog at path.
func NewCatalogWatcher(path string, dims Dimensions, manager *Manager, logger *logging.Logger) (*CatalogWatcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	w := &CatalogWatcher{
		path:    abs,
		dims:    dims,
		manager: manager,
		logger:  logger.Named("catalog"),
		watcher: watcher,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	w.reload = debounce.New(DefaultReloadDelay, func() { w.Reload(w.ctx) })
	return w, nil
}

// Start begins watching. Events are processed on a background goroutine
// until Stop is called or ctx is cancelled.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching catalog directory: %w", err)
	}
	w.ctx = ctx
	w.started.Store(true)

	go w.processEvents(ctx)

	w.logger.Info(ctx, "watching catalog", zap.String("path", w.path))
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *CatalogWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.reload.Stop()
		_ = w.watcher.Close()
	})
	if w.started.Load() {
		<-w.done
	}
}

// Reload reads the catalog and replaces the manager contents. A broken
// catalog is logged and the previous contents are kept.
func (w *CatalogWatcher) Reload(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	projects, err := LoadCatalog(w.path, w.dims)
	if err != nil {
		w.logger.Error(ctx, "catalog reload failed, keeping previous catalog", zap.Error(err))
		return
	}
	if err := w.manager.Replace(ctx, projects); err != nil {
		w.logger.Error(ctx, "catalog replace failed", zap.Error(err))
		return
	}
	w.logger.Info(ctx, "catalog reloaded", zap.Int("projects", len(projects)))
}

func (w *CatalogWatcher) processEvents(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			w.reload.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "catalog watcher error", zap.Error(err))
		}
	}
}
