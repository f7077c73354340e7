// Package unsaved materializes the in-memory content of open editor buffers
// so archives capture work that has not been saved to disk yet.
package unsaved

import (
	"path/filepath"
	"strings"

	"github.com/fakeyudi/focuswatch/internal/exclude"
)

// Document is one open editor buffer.
type Document interface {
	// Path returns the absolute on-disk path backing the buffer, or ""
	// for untitled buffers.
	Path() string
	// Name returns a display name, used to place untitled buffers in the
	// archive.
	Name() string
	// Dirty reports whether the buffer differs from its saved state.
	Dirty() bool
	// Untitled reports whether the buffer has no disk counterpart.
	Untitled() bool
	// Text returns the full current buffer content as UTF-8 bytes.
	Text() ([]byte, error)
}

// Registry enumerates currently open documents.
type Registry interface {
	Documents() ([]Document, error)
}

// Entry is an in-memory snapshot destined for an archive.
type Entry struct {
	ArchivePath string // forward-slash relative path, or UNSAVED/<name>
	Content     []byte
}

// UntitledPrefix is the archive directory holding untitled buffer content.
const UntitledPrefix = "UNSAVED/"

// defaultUntitledName is used when an untitled buffer has no display name.
const defaultUntitledName = "untitled.txt"

// Collect snapshots all documents worth archiving at call time: dirty
// disk-backed buffers land at their workspace-relative path (so the
// in-memory text occupies the same logical path a disk change would),
// untitled buffers land under UNSAVED/. Content is read at call time, never
// cached. A nil registry and all per-document failures yield a silent skip;
// unsaved capture is best-effort.
func Collect(reg Registry, root string, f *exclude.Filter) []Entry {
	if reg == nil {
		return nil
	}
	docs, err := reg.Documents()
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, doc := range docs {
		if !doc.Dirty() && !doc.Untitled() {
			continue
		}

		var archivePath string
		if doc.Untitled() {
			name := filepath.Base(doc.Name())
			if name == "" || name == "." || name == string(filepath.Separator) {
				name = defaultUntitledName
			}
			// Untitled buffers have no meaningful workspace-relative
			// path, so no exclusion filtering applies.
			archivePath = UntitledPrefix + name
		} else {
			rel, err := filepath.Rel(root, doc.Path())
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
				continue
			}
			if f != nil && f.Excluded(rel) {
				continue
			}
			archivePath = rel
		}

		content, err := doc.Text()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ArchivePath: archivePath, Content: content})
	}
	return entries
}

// MemoryDocument is an in-memory Document, used by tests and the plain
// (no-editor) session mode.
type MemoryDocument struct {
	FilePath    string
	DisplayName string
	IsDirty     bool
	IsUntitled  bool
	Content     []byte
}

func (d *MemoryDocument) Path() string          { return d.FilePath }
func (d *MemoryDocument) Name() string          { return d.DisplayName }
func (d *MemoryDocument) Dirty() bool           { return d.IsDirty }
func (d *MemoryDocument) Untitled() bool        { return d.IsUntitled }
func (d *MemoryDocument) Text() ([]byte, error) { return d.Content, nil }

// MemoryRegistry is a fixed-document Registry.
type MemoryRegistry struct {
	Docs []Document
}

func (r *MemoryRegistry) Documents() ([]Document, error) { return r.Docs, nil }
