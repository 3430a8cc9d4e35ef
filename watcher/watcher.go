// Package watcher signals when a directory tree changes so its index can be rebuilt.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/lexandro/fastfind/walker"
)

// Options configures a Watcher.
type Options struct {
	Ignore   walker.IgnoreChecker // May be nil
	Debounce time.Duration
	// Exclude lists absolute paths and globs (matched against base names) whose
	// events are dropped, typically the index file and its temporaries.
	Exclude []string
	Logger  *slog.Logger
}

// Watcher provides recursive file system watching with debouncing.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options
	rootDir   string
	logger    *slog.Logger
}

// NewWatcher creates a recursive file watcher on the given root directory.
// It registers all non-ignored subdirectories for watching.
func NewWatcher(rootDir string, opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(opts.Debounce),
		opts:      opts,
		rootDir:   rootDir,
		logger:    logger,
	}

	if err := fsWatcher.Add(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	// Reuse the index walk so watched directories match indexed ones.
	dirs, err := walker.Walk(rootDir, walker.Options{Ignore: opts.Ignore})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	for entry := range dirs {
		if !entry.IsDir() {
			continue
		}
		if watchErr := fsWatcher.Add(entry.Path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", entry.Path, "error", watchErr)
		}
	}

	return w, nil
}

// Batches returns the channel that receives debounced change batches.
func (w *Watcher) Batches() <-chan Batch {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
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

// handleEvent filters a single fsnotify event and feeds it to the debouncer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.excluded(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Lstat(path)
		if err == nil && info.IsDir() {
			if w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnoreDir(path) {
				return
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
		}
	} else if w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnore(path) {
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

func (w *Watcher) excluded(path string) bool {
	if slices.Contains(w.opts.Exclude, path) {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range w.opts.Exclude {
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
