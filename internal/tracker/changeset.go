// Package tracker accumulates the set of workspace files known to have
// changed since the last archive build.
package tracker

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fakeyudi/focuswatch/internal/exclude"
)

// ChangeSet is a deduplicated set of workspace-relative paths (forward-slash
// separators). Safe for concurrent use: the watcher adds while the archive
// builder drains.
type ChangeSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewChangeSet returns an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{paths: make(map[string]struct{})}
}

// Add records a workspace-relative path as changed.
func (c *ChangeSet) Add(rel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[rel] = struct{}{}
}

// Snapshot returns the current contents in sorted order without clearing.
// The builder calls Forget with the same slice once the paths have been
// archived, so changes recorded mid-build are never lost.
func (c *ChangeSet) Snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.paths))
	for p := range c.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Forget removes exactly the given paths, leaving any recorded since the
// snapshot in place.
func (c *ChangeSet) Forget(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		delete(c.paths, p)
	}
}

// Clear drops everything. Called on session stop.
func (c *ChangeSet) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = make(map[string]struct{})
}

// Len returns the number of tracked paths.
func (c *ChangeSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

// Note validates an absolute path against the workspace root and the
// exclusion filter, then records it. This is the single ingest point for
// both filesystem watch events and editor-edit notifications. Returns true
// if the path was recorded.
func (c *ChangeSet) Note(root, path string, f *exclude.Filter) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	// Reject anything that resolves outside the workspace root.
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	if f != nil && f.Excluded(rel) {
		return false
	}
	c.Add(rel)
	return true
}
