package resume

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amishk599/screener/internal/model"
)

// DirWatcher re-lists a directory whenever its contents change and hands the
// full new listing to a callback, the same way re-opening a file picker
// replaces the previous selection.
type DirWatcher struct {
	dir      string
	source   Source
	debounce time.Duration
	logger   *slog.Logger
}

// NewDirWatcher watches dir, listing it through source.
func NewDirWatcher(dir string, source Source, logger *slog.Logger) *DirWatcher {
	return &DirWatcher{
		dir:      dir,
		source:   source,
		debounce: 250 * time.Millisecond,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. Bursts of events inside the debounce
// window produce a single callback.
func (w *DirWatcher) Run(ctx context.Context, onChange func([]model.UploadedFile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warn("failed to close watcher", "error", err)
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching resume directory", "dir", w.dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				pending = time.After(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)

		case <-pending:
			pending = nil
			files, err := w.source.List(ctx, w.dir)
			if err != nil {
				w.logger.Warn("re-list failed", "dir", w.dir, "error", err)
				continue
			}
			w.logger.Debug("resume directory changed", "dir", w.dir, "files", len(files))
			onChange(files)
		}
	}
}
