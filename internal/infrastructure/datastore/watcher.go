package datastore

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/riskboard/pkg/logger"
)

const invalidatingOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher invalidates cached tables when their files change.
type Watcher struct {
	fs     *fsnotify.Watcher
	cache  *TableCache
	logger logger.Logger
	// OnInvalidate, when set, is called after each invalidation.
	OnInvalidate func(path string)
}

// NewWatcher watches dir for CSV changes.
func NewWatcher(dir string, cache *TableCache, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{fs: fsw, cache: cache, logger: log.WithComponent("datastore.watcher")}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&invalidatingOps == 0 {
				continue
			}
			if !IsCSV(event.Name) {
				continue
			}
			w.cache.Invalidate(event.Name)
			w.logger.Debug(ctx, "Dataset invalidated", logger.Fields{"path": event.Name, "op": event.Op.String()})
			if w.OnInvalidate != nil {
				w.OnInvalidate(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "Watcher error", logger.Fields{"error": err.Error()})
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
