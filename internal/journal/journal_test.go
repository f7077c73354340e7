package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readRawLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// Two appends yield exactly two lines, each independently parseable, in
// append order.
func TestAppendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	w.SessionStarted(start)
	w.SessionStopped(start.Add(25*time.Minute), 25*time.Minute)

	lines := readRawLines(t, filepath.Join(dir, SessionsFile))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first, second SessionRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 not valid JSON: %v", err)
	}

	if first.Event != "start" || second.Event != "stop" {
		t.Errorf("events = %q, %q", first.Event, second.Event)
	}
	if first.DurationMs != nil {
		t.Error("start record must not carry durationMs")
	}
	if second.DurationMs == nil || *second.DurationMs != (25*time.Minute).Milliseconds() {
		t.Errorf("stop durationMs = %v", second.DurationMs)
	}
	if first.At != start.Format(time.RFC3339) {
		t.Errorf("at = %q, want local RFC3339 %q", first.At, start.Format(time.RFC3339))
	}
}

func TestBackupRecord(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	at := time.Date(2024, 3, 15, 9, 10, 0, 0, time.Local)
	w.BackupWritten(at, "20240315-091000-changed.zip", 4)

	lines := readRawLines(t, filepath.Join(dir, BackupsFile))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	var rec BackupRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Zip != "20240315-091000-changed.zip" || rec.Files != 4 {
		t.Errorf("record = %+v", rec)
	}
}

// Journal writes are best-effort: an unwritable directory must not error,
// panic, or otherwise surface.
func TestAppendSwallowsFailures(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := &Writer{Dir: blocked}
	w.SessionStarted(time.Now()) // must not panic
}

func TestReadHelpers(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	w.SessionStarted(time.Now())
	w.BackupWritten(time.Now(), "a.zip", 1)
	w.BackupWritten(time.Now(), "b.zip", 2)

	sessions, err := ReadSessions(dir)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("sessions = %v, %v", sessions, err)
	}
	backups, err := ReadBackups(dir)
	if err != nil || len(backups) != 2 {
		t.Fatalf("backups = %v, %v", backups, err)
	}
	if backups[0].Zip != "a.zip" || backups[1].Zip != "b.zip" {
		t.Errorf("order not preserved: %v", backups)
	}
}

func TestReadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	sessions, err := ReadSessions(dir)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("sessions = %v, %v", sessions, err)
	}
}

// Malformed lines are skipped, valid ones kept.
func TestReadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := `{"at":"x","zip":"good.zip","files":1}` + "\n" + "not json\n"
	if err := os.WriteFile(filepath.Join(dir, BackupsFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	backups, err := ReadBackups(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 || !strings.HasPrefix(backups[0].Zip, "good") {
		t.Fatalf("backups = %v", backups)
	}
}
