package unsaved

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// BackupStoreRegistry reads unsaved buffer state from the hot-exit backup
// stores kept by VS Code and its forks (Kiro, Cursor, Windsurf, VSCodium).
// Each workspace gets a hashed directory containing `file/` entries (dirty
// disk-backed buffers, names are URL-escaped file URIs) and `untitled/`
// entries (buffers that were never saved). The first line of every backup
// file is the resource URI plus metadata; the remainder is the buffer text.
type BackupStoreRegistry struct {
	// Dirs overrides the auto-detected backup store locations (used in tests).
	Dirs []string
}

var vscodeAppDirs = []string{"Code", "Kiro", "Cursor", "Windsurf", "VSCodium"}

// DefaultBackupDirs returns the per-OS backup store locations for all
// supported VS Code-family editors.
func DefaultBackupDirs(home string) []string {
	var dirs []string
	for _, app := range vscodeAppDirs {
		switch runtime.GOOS {
		case "darwin":
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", app, "Backups"))
		case "windows":
			dirs = append(dirs, filepath.Join(os.Getenv("APPDATA"), app, "Backups"))
		default:
			dirs = append(dirs, filepath.Join(home, ".config", app, "Backups"))
		}
	}
	return dirs
}

// Documents enumerates every backed-up buffer across all stores. Unreadable
// stores and malformed entries are skipped.
func (r *BackupStoreRegistry) Documents() ([]Document, error) {
	dirs := r.Dirs
	if dirs == nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dirs = DefaultBackupDirs(home)
	}

	var docs []Document
	for _, dir := range dirs {
		workspaces, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ws := range workspaces {
			if !ws.IsDir() {
				continue
			}
			wsDir := filepath.Join(dir, ws.Name())
			docs = append(docs, readBackupEntries(filepath.Join(wsDir, "file"), false)...)
			docs = append(docs, readBackupEntries(filepath.Join(wsDir, "untitled"), true)...)
		}
	}
	return docs, nil
}

// readBackupEntries parses every backup file in dir into a Document.
func readBackupEntries(dir string, untitled bool) []Document {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		doc, ok := parseBackupFile(filepath.Join(dir, entry.Name()), entry.Name(), untitled)
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// parseBackupFile splits a hot-exit backup into its metadata line and buffer
// text. The existence of a backup file means the buffer was dirty.
func parseBackupFile(path, name string, untitled bool) (Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var text []byte
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		text = data[i+1:]
	}

	if untitled {
		return &backupDocument{name: name, untitled: true, text: text}, true
	}

	filePath, err := decodeBackupName(name)
	if err != nil || filePath == "" {
		return nil, false
	}
	return &backupDocument{path: filePath, name: filepath.Base(filePath), text: text}, true
}

// decodeBackupName decodes a backup file name (a URL-escaped file URI) into
// an absolute file path. Non-file schemes yield "".
func decodeBackupName(name string) (string, error) {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(decoded, "file://") {
		return "", nil
	}
	u, err := url.Parse(decoded)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// backupDocument is a Document backed by a parsed hot-exit backup file.
type backupDocument struct {
	path     string
	name     string
	untitled bool
	text     []byte
}

func (d *backupDocument) Path() string          { return d.path }
func (d *backupDocument) Name() string          { return d.name }
func (d *backupDocument) Dirty() bool           { return true }
func (d *backupDocument) Untitled() bool        { return d.untitled }
func (d *backupDocument) Text() ([]byte, error) { return d.text, nil }
