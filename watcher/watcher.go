// Package watcher turns file system activity under a scan root into debounced
// batches that trigger rescans.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch is emitted.
const DefaultInterval = 250 * time.Millisecond

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// reloader is implemented by checkers that cache .gitignore rules.
type reloader interface {
	Reload()
}

// controlFiles change scan behaviour without being scanned themselves.
var controlFiles = map[string]struct{}{
	".gitignore":     {},
	".codexray.yaml": {},
}

// Watcher provides recursive file system watching with debouncing.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger
}

// NewWatcher creates a recursive file watcher on the given root directory.
// It registers all non-ignored subdirectories for watching. interval <= 0
// selects DefaultInterval.
func NewWatcher(rootDir string, ignoreChecker IgnoreChecker, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(interval),
		ignoreChecker: ignoreChecker,
		rootDir:       rootDir,
		logger:        logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Run listens for file system events and calls onBatch for every debounced
// batch until ctx is done or the watcher is closed. onBatch runs on the Run
// goroutine, so batches never overlap.
func (w *Watcher) Run(ctx context.Context, onBatch func(ctx context.Context, batch []DebouncedEvent)) {
	go w.listen()
	for {
		select {
		case <-ctx.Done():
			w.debouncer.Stop()
			return
		case batch := <-w.debouncer.Output():
			w.reloadIfNeeded(batch)
			w.logger.Debug("file changes detected", "events", len(batch))
			onBatch(ctx, batch)
		}
	}
}

// listen forwards fsnotify events into the debouncer until the watcher is closed.
func (w *Watcher) listen() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single fsnotify event, converting it to a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// If a new directory was created, start watching it
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
				// files may already exist before the watch is in place
				w.debouncer.Add(path, OpCreate)
			}
			return
		}
	}

	if !isControlFile(path) && w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

func (w *Watcher) reloadIfNeeded(batch []DebouncedEvent) {
	r, ok := w.ignoreChecker.(reloader)
	if !ok {
		return
	}
	for _, event := range batch {
		if filepath.Base(event.Path) == ".gitignore" {
			r.Reload()
			return
		}
	}
}

func isControlFile(path string) bool {
	_, ok := controlFiles[filepath.Base(path)]
	return ok
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
