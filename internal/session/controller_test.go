package session_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fakeyudi/focuswatch/internal/archive"
	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/exclude"
	"github.com/fakeyudi/focuswatch/internal/journal"
	"github.com/fakeyudi/focuswatch/internal/session"
	"github.com/fakeyudi/focuswatch/internal/tracker"
	"github.com/fakeyudi/focuswatch/internal/unsaved"
)

// fakeClock is a manually advanced clock for deterministic elapsed checks.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// newTestController wires a controller over a temp workspace.
func newTestController(t *testing.T, clock *fakeClock) (*session.Controller, *tracker.ChangeSet, string) {
	t.Helper()
	root := t.TempDir()
	changes := tracker.NewChangeSet()
	jw := &journal.Writer{Dir: config.LogsDir(root)}
	builder := &archive.Builder{
		Root:     root,
		Dir:      config.BackupsDir(root),
		Filter:   exclude.Static(config.StateDirName),
		Changes:  changes,
		Registry: &unsaved.MemoryRegistry{},
		Journal:  jw,
	}
	store, err := session.NewStateStore(root)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := session.New(session.Options{
		Root:     root,
		Interval: 50 * time.Millisecond,
		Builder:  builder,
		Changes:  changes,
		Journal:  jw,
		Store:    store,
		Now:      clock.Now,
	})
	return ctrl, changes, root
}

// Pause time must not advance elapsed time.
func TestPauseDoesNotAdvanceElapsed(t *testing.T) {
	clock := newFakeClock()
	ctrl, _, _ := newTestController(t, clock)

	if err := ctrl.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer ctrl.Stop()

	clock.Advance(time.Second)
	if err := ctrl.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	clock.Advance(5 * time.Second) // time spent paused
	if got := ctrl.Elapsed(); got != time.Second {
		t.Errorf("elapsed while paused = %v, want 1s", got)
	}
	if err := ctrl.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clock.Advance(time.Second)

	if got := ctrl.Elapsed(); got != 2*time.Second {
		t.Errorf("elapsed after resume = %v, want 2s", got)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	clock := newFakeClock()
	ctrl, _, _ := newTestController(t, clock)
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()

	if err := ctrl.Resume(); err != nil { // resume while running is a no-op
		t.Fatalf("Resume while running: %v", err)
	}
	if err := ctrl.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Pause(); err != nil { // pause while paused is a no-op
		t.Fatalf("Pause while paused: %v", err)
	}
	if !ctrl.Paused() {
		t.Error("expected paused")
	}
}

func TestDoubleStart(t *testing.T) {
	ctrl, _, _ := newTestController(t, newFakeClock())
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()
	if err := ctrl.Start(); !errors.Is(err, session.ErrAlreadyRunning) {
		t.Fatalf("second Start: got %v, want ErrAlreadyRunning", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	ctrl, _, _ := newTestController(t, newFakeClock())
	if _, err := ctrl.Stop(); !errors.Is(err, session.ErrNotRunning) {
		t.Fatalf("Stop: got %v, want ErrNotRunning", err)
	}
	if ctrl.Elapsed() != 0 {
		t.Error("Elapsed must be zero with no session")
	}
}

// Stop takes one final synchronous backup and journals both transitions.
func TestStopTakesFinalBackup(t *testing.T) {
	clock := newFakeClock()
	ctrl, changes, root := newTestController(t, clock)

	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	// Simulate a change that arrived between ticks.
	if err := os.WriteFile(filepath.Join(root, "late.go"), []byte("package late"), 0o644); err != nil {
		t.Fatal(err)
	}
	changes.Add("late.go")

	clock.Advance(90 * time.Second)
	elapsed, err := ctrl.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if elapsed != 90*time.Second {
		t.Errorf("elapsed = %v, want 90s", elapsed)
	}

	archives, err := os.ReadDir(config.BackupsDir(root))
	if err != nil || len(archives) != 1 {
		t.Fatalf("final backup missing: %v, %v", archives, err)
	}
	if changes.Len() != 0 {
		t.Error("change set must be cleared on stop")
	}

	recs, err := journal.ReadSessions(config.LogsDir(root))
	if err != nil || len(recs) != 2 {
		t.Fatalf("session records = %v, %v", recs, err)
	}
	if recs[0].Event != "start" || recs[1].Event != "stop" {
		t.Errorf("events = %q, %q", recs[0].Event, recs[1].Event)
	}
	if recs[1].DurationMs == nil || *recs[1].DurationMs != (90*time.Second).Milliseconds() {
		t.Errorf("stop durationMs = %v", recs[1].DurationMs)
	}
}

// The timer fires builds while the session runs.
func TestTimerDrivesBuilds(t *testing.T) {
	clock := newFakeClock()
	ctrl, changes, root := newTestController(t, clock)

	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()

	if err := os.WriteFile(filepath.Join(root, "tick.go"), []byte("package tick"), 0o644); err != nil {
		t.Fatal(err)
	}
	changes.Add("tick.go")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if entries, err := os.ReadDir(config.BackupsDir(root)); err == nil && len(entries) > 0 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("timer never produced a backup")
}

// The state file mirrors the session and disappears on stop.
func TestStateFileLifecycle(t *testing.T) {
	clock := newFakeClock()
	ctrl, _, root := newTestController(t, clock)

	store, err := session.NewStateStore(root)
	if err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	st, err := store.Load()
	if err != nil {
		t.Fatalf("state missing while running: %v", err)
	}
	if st.PID != os.Getpid() || st.Paused {
		t.Errorf("state = %+v", st)
	}

	if err := ctrl.Pause(); err != nil {
		t.Fatal(err)
	}
	st, err = store.Load()
	if err != nil || !st.Paused {
		t.Errorf("paused state not persisted: %+v, %v", st, err)
	}

	if _, err := ctrl.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("state after stop: got %v, want ErrNoSession", err)
	}
}

// Overlapping stop and timer builds serialize on the builder; nothing is
// double-archived and nothing is lost.
func TestStopWhileTimerBusy(t *testing.T) {
	clock := newFakeClock()
	ctrl, changes, root := newTestController(t, clock)

	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		name := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		changes.Add(filepath.Base(name))
	}
	// Let at least one timer tick race with the stop below.
	time.Sleep(60 * time.Millisecond)

	if _, err := ctrl.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if changes.Len() != 0 {
		t.Errorf("paths left behind: %v", changes.Snapshot())
	}

	// Every tracked file appears in exactly one archive.
	counts := map[string]int{}
	entries, err := os.ReadDir(config.BackupsDir(root))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		for _, name := range zipEntryNames(t, filepath.Join(config.BackupsDir(root), e.Name())) {
			counts[name]++
		}
	}
	for name, n := range counts {
		if n != 1 {
			t.Errorf("%s archived %d times", name, n)
		}
	}
	if len(counts) != 20 {
		t.Errorf("got %d distinct entries, want 20", len(counts))
	}
}

// zipEntryNames lists the entry paths of one archive.
func zipEntryNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}
