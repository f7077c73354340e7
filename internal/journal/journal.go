// Package journal appends line-delimited JSON records of session transitions
// and archive builds. Writes are best-effort: a journal failure must never
// block a session state transition or a backup tick.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Journal file names under the logs directory.
const (
	SessionsFile = "sessions.jsonl"
	BackupsFile  = "backups.jsonl"
)

// SessionRecord is one line of sessions.jsonl.
type SessionRecord struct {
	Event      string `json:"event"` // "start" or "stop"
	At         string `json:"at"`    // local ISO-8601 with UTC offset
	DurationMs *int64 `json:"durationMs,omitempty"`
}

// BackupRecord is one line of backups.jsonl.
type BackupRecord struct {
	At    string `json:"at"`
	Zip   string `json:"zip"`
	Files int    `json:"files"`
}

// Writer appends records to the journal files in Dir.
type Writer struct {
	Dir string
	Log *zap.Logger
}

// SessionStarted appends a start record.
func (w *Writer) SessionStarted(at time.Time) {
	w.appendLine(SessionsFile, SessionRecord{Event: "start", At: at.Format(time.RFC3339)})
}

// SessionStopped appends a stop record carrying the session duration.
func (w *Writer) SessionStopped(at time.Time, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	w.appendLine(SessionsFile, SessionRecord{Event: "stop", At: at.Format(time.RFC3339), DurationMs: &ms})
}

// BackupWritten appends a record for a persisted archive.
func (w *Writer) BackupWritten(at time.Time, zipName string, files int) {
	w.appendLine(BackupsFile, BackupRecord{At: at.Format(time.RFC3339), Zip: zipName, Files: files})
}

// appendLine serializes rec as one JSON line and appends it to name. All
// failures are swallowed; the journal is never load-bearing.
func (w *Writer) appendLine(name string, rec any) {
	data, err := json.Marshal(rec)
	if err != nil {
		w.debug("journal marshal failed", err)
		return
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		w.debug("journal dir create failed", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(w.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.debug("journal open failed", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		w.debug("journal write failed", err)
	}
}

func (w *Writer) debug(msg string, err error) {
	if w.Log != nil {
		w.Log.Debug(msg, zap.Error(err))
	}
}

// ReadSessions parses every record in sessions.jsonl under dir. A missing
// file yields an empty slice; malformed lines are skipped.
func ReadSessions(dir string) ([]SessionRecord, error) {
	var out []SessionRecord
	err := readLines(filepath.Join(dir, SessionsFile), func(line []byte) {
		var rec SessionRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

// ReadBackups parses every record in backups.jsonl under dir.
func ReadBackups(dir string) ([]BackupRecord, error) {
	var out []BackupRecord
	err := readLines(filepath.Join(dir, BackupsFile), func(line []byte) {
		var rec BackupRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

func readLines(path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		fn(scanner.Bytes())
	}
	return scanner.Err()
}
