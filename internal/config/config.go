package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Workspace-relative state layout. Everything focuswatch writes lives under
// the state directory, which is itself excluded from change tracking.
const (
	StateDirName   = ".focuswatch"
	BackupsDirName = "backups"
	LogsDirName    = "logs"
)

// MinIntervalSec is the floor for the backup timer period.
const MinIntervalSec = 10

// DefaultMaxItems is the archive retention cap when none is configured.
const DefaultMaxItems = 300

// Config holds all configurable focuswatch settings.
type Config struct {
	MinimalUI         bool     `json:"minimal_ui"`          // render the bare clock only
	BackupIntervalSec int      `json:"backup_interval_sec"` // clamped to MinIntervalSec
	BackupMaxItems    int      `json:"backup_max_items"`
	BackupExcludes    []string `json:"backup_excludes"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		BackupIntervalSec: 60,
		BackupMaxItems:    DefaultMaxItems,
		BackupExcludes:    []string{},
	}
}

// Interval returns the backup timer period, clamped to the minimum.
func (c Config) Interval() time.Duration {
	sec := c.BackupIntervalSec
	if sec < MinIntervalSec {
		sec = MinIntervalSec
	}
	return time.Duration(sec) * time.Second
}

// MaxItems returns the retention cap, falling back to the default.
func (c Config) MaxItems() int {
	if c.BackupMaxItems <= 0 {
		return DefaultMaxItems
	}
	return c.BackupMaxItems
}

// StateDir returns the workspace state directory for root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// BackupsDir returns the archive directory for root.
func BackupsDir(root string) string {
	return filepath.Join(StateDir(root), BackupsDirName)
}

// LogsDir returns the journal directory for root.
func LogsDir(root string) string {
	return filepath.Join(StateDir(root), LogsDirName)
}

// LoadGlobal reads ~/.config/focuswatch/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "focuswatch", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .focuswatchrc in the workspace root.
// Returns nil (no error) if the file is absent.
func LoadProject(root string) (*Config, error) {
	return loadFile(filepath.Join(root, ".focuswatchrc"), false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.MinimalUI {
			result.MinimalUI = true
		}
		if c.BackupIntervalSec > 0 {
			result.BackupIntervalSec = c.BackupIntervalSec
		}
		if c.BackupMaxItems > 0 {
			result.BackupMaxItems = c.BackupMaxItems
		}
		if len(c.BackupExcludes) > 0 {
			result.BackupExcludes = c.BackupExcludes
		}
	}

	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
