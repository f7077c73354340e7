// Package archive snapshots changed and unsaved content into timestamped zip
// files and bounds how many of them accumulate.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fakeyudi/focuswatch/internal/exclude"
	"github.com/fakeyudi/focuswatch/internal/journal"
	"github.com/fakeyudi/focuswatch/internal/tracker"
	"github.com/fakeyudi/focuswatch/internal/unsaved"
)

// Suffix is the archive naming suffix; the leading timestamp makes lexical
// order equal chronological order.
const Suffix = "-changed.zip"

// timestampLayout is local time, second resolution. Two builds within the
// same second overwrite each other; acceptable given the minimum 10s period.
const timestampLayout = "20060102-150405"

// Builder turns the current ChangeSet plus the unsaved buffer state into one
// zip archive per invocation.
type Builder struct {
	Root     string // absolute workspace root
	Dir      string // backups directory
	Filter   *exclude.Filter
	Changes  *tracker.ChangeSet
	Registry unsaved.Registry // may be nil
	Journal  *journal.Writer  // may be nil
	MaxItems int
	Log      *zap.Logger

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time

	// OnArchive, if set, is called after each successfully persisted
	// archive. Used by the TUI to surface backup activity.
	OnArchive func(name string, files int)

	// mu serializes overlapping builds: a stop-triggered build and a
	// timer tick must never drain the ChangeSet out from under each other.
	mu sync.Mutex
}

// BuildIfNeeded performs one snapshot attempt. The no-change path returns
// without touching the filesystem. Per-file failures are skipped silently;
// only a whole-archive write failure propagates, leaving the ChangeSet
// intact so the next tick retries.
func (b *Builder) BuildIfNeeded(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fromDisk := b.Changes.Snapshot()
	entries := unsaved.Collect(b.Registry, b.Root, b.Filter)
	if len(fromDisk) == 0 && len(entries) == 0 {
		return nil // common no-op tick
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return fmt.Errorf("creating backups directory: %w", err)
	}

	stamp := now()
	name := stamp.Format(timestampLayout) + Suffix
	path := filepath.Join(b.Dir, name)

	count, err := b.writeArchive(ctx, path, entries, fromDisk, log)
	if err != nil {
		os.Remove(path) // best-effort; a partial archive is worse than none
		return err
	}

	if count == 0 {
		// Everything was skipped; never persist an empty archive and
		// never journal one.
		os.Remove(path)
		b.Changes.Forget(fromDisk)
		return nil
	}

	Enforce(b.Dir, b.MaxItems)
	if b.Journal != nil {
		b.Journal.BackupWritten(stamp, name, count)
	}
	b.Changes.Forget(fromDisk)
	log.Debug("archive written", zap.String("zip", name), zap.Int("files", count))
	if b.OnArchive != nil {
		b.OnArchive(name, count)
	}
	return nil
}

// writeArchive creates the zip at path and returns how many entries made it
// in. Unsaved entries go first so in-memory content wins over a stale disk
// copy of the same path.
func (b *Builder) writeArchive(ctx context.Context, path string, entries []unsaved.Entry, fromDisk []string, log *zap.Logger) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	count := 0
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		w, err := zw.Create(e.ArchivePath)
		if err != nil {
			zw.Close()
			return 0, fmt.Errorf("adding %s: %w", e.ArchivePath, err)
		}
		if _, err := w.Write(e.Content); err != nil {
			zw.Close()
			return 0, fmt.Errorf("adding %s: %w", e.ArchivePath, err)
		}
		seen[e.ArchivePath] = true
		count++
	}

	for _, rel := range fromDisk {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return 0, err
		}
		if seen[rel] {
			continue // unsaved copy already covers this path
		}
		// Patterns may have changed since the path was tracked.
		if b.Filter != nil && b.Filter.Excluded(rel) {
			continue
		}
		if b.addDiskFile(zw, rel, log) {
			count++
		}
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	return count, nil
}

// addDiskFile re-reads rel from disk at build time and streams it into the
// archive. Vanished files, non-regular files and per-file I/O failures are
// skipped; partial archives are acceptable.
func (b *Builder) addDiskFile(zw *zip.Writer, rel string, log *zap.Logger) bool {
	full := filepath.Join(b.Root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	src, err := os.Open(full)
	if err != nil {
		log.Debug("skipping unreadable file", zap.String("path", rel), zap.Error(err))
		return false
	}
	defer src.Close()

	w, err := zw.Create(rel)
	if err != nil {
		return false
	}
	if _, err := io.Copy(w, src); err != nil {
		log.Debug("skipping file mid-copy", zap.String("path", rel), zap.Error(err))
		return false
	}
	return true
}
