package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/focuswatch/internal/config"
)

// ErrNoSession is returned by Load when no session state exists on disk.
var ErrNoSession = errors.New("no active session")

// State is the on-disk mirror of a running session, written so other
// terminals can inspect it (status) and signal the owning process (stop,
// pause, resume). Deleted when the session ends.
type State struct {
	ID            string     `json:"id"`
	PID           int        `json:"pid"`
	WorkDir       string     `json:"work_dir"`
	StartTime     time.Time  `json:"start_time"`
	Paused        bool       `json:"paused"`
	PausedAccumMs int64      `json:"paused_accum_ms"`
	PauseStart    *time.Time `json:"pause_start,omitempty"`
}

// Elapsed returns the session's working time as of now: wall time minus
// everything spent paused.
func (s *State) Elapsed(now time.Time) time.Duration {
	end := now
	if s.Paused && s.PauseStart != nil {
		end = *s.PauseStart
	}
	return end.Sub(s.StartTime) - time.Duration(s.PausedAccumMs)*time.Millisecond
}

// StateStore persists a session State to disk.
type StateStore interface {
	Save(s *State) error
	Load() (*State, error) // returns ErrNoSession if none exists
	Delete() error
}

// diskStore is the concrete StateStore writing into the workspace state dir.
type diskStore struct {
	path string // full path to session.json
}

// NewStateStore returns a StateStore rooted in the workspace. Path:
// <root>/.focuswatch/session.json.
func NewStateStore(root string) (StateStore, error) {
	dir := config.StateDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "session.json")}, nil
}

// Save marshals s to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "session-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	return nil
}

// Load reads and unmarshals the session state file.
// Returns ErrNoSession if the file does not exist.
func (d *diskStore) Load() (*State, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return &s, nil
}

// Delete removes the session state file from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}
