package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func makeArchives(t *testing.T, dir string, n int) []string {
	t.Helper()
	names := make([]string, n)
	for i := range names {
		// Strictly increasing timestamp prefixes.
		names[i] = fmt.Sprintf("20240101-%02d%02d%02d-changed.zip", i/3600, (i/60)%60, i%60)
		if err := os.WriteFile(filepath.Join(dir, names[i]), []byte("zip"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return names
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// 301 archives with a cap of 300: exactly the oldest one goes.
func TestEnforceDeletesOldest(t *testing.T) {
	dir := t.TempDir()
	names := makeArchives(t, dir, 301)

	Enforce(dir, 300)

	remaining := listNames(t, dir)
	if len(remaining) != 300 {
		t.Fatalf("got %d archives, want 300", len(remaining))
	}
	if remaining[0] != names[1] {
		t.Errorf("oldest remaining = %s, want %s", remaining[0], names[1])
	}
}

func TestEnforceUnderCapIsNoOp(t *testing.T) {
	dir := t.TempDir()
	makeArchives(t, dir, 5)

	Enforce(dir, 10)

	if got := len(listNames(t, dir)); got != 5 {
		t.Fatalf("got %d archives, want 5", got)
	}
}

func TestEnforceIgnoresNonArchives(t *testing.T) {
	dir := t.TempDir()
	makeArchives(t, dir, 3)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "aaa-sub.zip"), 0o755); err != nil {
		t.Fatal(err)
	}

	Enforce(dir, 1)

	remaining := listNames(t, dir)
	// One zip left, plus the text file and the directory.
	zips := 0
	for _, n := range remaining {
		if n == "notes.txt" || n == "aaa-sub.zip" {
			continue
		}
		zips++
	}
	if zips != 1 {
		t.Fatalf("got %d zips, want 1: %v", zips, remaining)
	}
}

func TestEnforceMissingDir(t *testing.T) {
	// Must not panic or create anything.
	Enforce(filepath.Join(t.TempDir(), "absent"), 10)
}
