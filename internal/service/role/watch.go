package role

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

type refresher interface {
	Refresh(ctx context.Context) (*Snapshot, error)
}

// FileWatcher refreshes a cache whenever its TOML profile file changes.
//
// The parent directory is watched rather than the file so that editors which
// save by rename keep triggering events.
type FileWatcher struct {
	path     string
	cache    refresher
	debounce time.Duration
	logger   *slog.Logger
}

func NewFileWatcher(path string, cache refresher, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		cache:    cache,
		debounce: defaultWatchDebounce,
		logger:   logger,
	}
}

// Run blocks until ctx is done. A bad edit is logged and the previous
// snapshot keeps serving.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("Watching role profiles file", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Role profiles watcher error", "error", err)

		case <-fire:
			fire = nil
			snap, err := w.cache.Refresh(ctx)
			if err != nil {
				w.logger.Error("Failed to reload role profiles file", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("Role profiles file reloaded", "path", w.path, "profiles", snap.Len())
		}
	}
}
