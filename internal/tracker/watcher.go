package tracker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fakeyudi/focuswatch/internal/exclude"
)

// Watcher feeds filesystem change events from a recursive watch on Root into
// a ChangeSet. Only modify and create events are tracked; deletions are not
// (a vanished file is skipped at build time instead).
type Watcher struct {
	Root    string // absolute workspace root
	Filter  *exclude.Filter
	Changes *ChangeSet
	Log     *zap.Logger
}

// Run watches Root recursively until ctx is cancelled. Watcher errors are
// non-fatal; the loop keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Walk the directory tree and add a watch for every subdirectory,
	// skipping excluded ones so we never descend into node_modules and co.
	if err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.Root, path); err == nil && rel != "." {
			if w.Filter != nil && w.Filter.Excluded(filepath.ToSlash(rel)+"/") {
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	}); err != nil {
		return err
	}

	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.Changes.Note(w.Root, event.Name, w.Filter) {
				log.Debug("tracked change", zap.String("path", event.Name))
			}
			// A newly created directory needs its own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}
