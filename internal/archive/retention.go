package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fakeyudi/focuswatch/internal/config"
)

// Enforce bounds the number of archives in dir to max (default
// config.DefaultMaxItems when max <= 0), deleting the oldest by filename.
// Timestamp-prefixed names make lexical order chronological. Best-effort:
// listing and deletion failures are swallowed, retention is never fatal.
func Enforce(dir string, max int) {
	if max <= 0 {
		max = config.DefaultMaxItems
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var names []string
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".zip") {
			continue
		}
		names = append(names, item.Name())
	}
	sort.Strings(names)

	for len(names) > max {
		_ = os.Remove(filepath.Join(dir, names[0]))
		names = names[1:]
	}
}
