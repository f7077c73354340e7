// Package session owns the lifecycle of one focus session: the stopwatch,
// the change watcher, the backup timer, and the journal records around them.
package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakeyudi/focuswatch/internal/archive"
	"github.com/fakeyudi/focuswatch/internal/journal"
	"github.com/fakeyudi/focuswatch/internal/tracker"
)

// ErrAlreadyRunning is returned by Start when a session is in progress.
var ErrAlreadyRunning = errors.New("session already in progress")

// ErrNotRunning is returned by lifecycle methods when no session is running.
var ErrNotRunning = errors.New("no session running")

// Options configures a Controller.
type Options struct {
	Root     string
	Interval time.Duration // backup timer period; callers clamp via config
	Builder  *archive.Builder
	Changes  *tracker.ChangeSet
	Journal  *journal.Writer // may be nil
	Store    StateStore      // may be nil
	Log      *zap.Logger
	Now      func() time.Time

	// Watch runs the filesystem watcher until its context is cancelled.
	// May be nil (tests that only exercise the stopwatch).
	Watch func(ctx context.Context) error
}

// Controller orchestrates start/stop/pause of a session. All state is owned
// here; there are no package-level session globals. Methods are safe for
// concurrent use (signal handlers and the UI both call in).
type Controller struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time

	mu          sync.Mutex
	id          string
	running     bool
	paused      bool
	startTime   time.Time
	pausedAccum time.Duration
	pauseStart  time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// New builds a Controller. It does nothing until Start.
func New(opts Options) *Controller {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Controller{opts: opts, log: log, now: now}
}

// Start begins a session: records the start journal entry, persists the
// state file, and launches the watcher and backup-timer goroutines.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrAlreadyRunning
	}

	c.id = uuid.New().String()
	c.running = true
	c.paused = false
	c.startTime = c.now()
	c.pausedAccum = 0

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx)

	if c.opts.Journal != nil {
		c.opts.Journal.SessionStarted(c.startTime)
	}
	c.saveStateLocked()
	c.log.Debug("session started", zap.String("id", c.id))
	return nil
}

// run owns the watcher and the backup ticker until the session stops.
func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	var wg sync.WaitGroup
	if c.opts.Watch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.opts.Watch(ctx); err != nil {
				c.log.Debug("watcher exited", zap.Error(err))
			}
		}()
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			// Failed ticks retry on the next firing; the ChangeSet
			// keeps its paths until a build succeeds.
			if err := c.opts.Builder.BuildIfNeeded(ctx); err != nil {
				c.log.Debug("backup tick failed", zap.Error(err))
			}
		}
	}
}

// Stop ends the session: cancels the timer, waits for in-flight work, runs
// one final synchronous build, journals the stop record, and resets. Returns
// the session's working duration.
func (c *Controller) Stop() (time.Duration, error) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return 0, ErrNotRunning
	}
	if c.paused {
		c.pausedAccum += c.now().Sub(c.pauseStart)
		c.paused = false
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	// No new timer builds start after this; the builder's own lock
	// serializes us behind any build already in flight.
	cancel()
	<-done

	if err := c.opts.Builder.BuildIfNeeded(context.Background()); err != nil {
		c.log.Debug("final backup failed", zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	stopTime := c.now()
	elapsed := stopTime.Sub(c.startTime) - c.pausedAccum
	if c.opts.Journal != nil {
		c.opts.Journal.SessionStopped(stopTime, elapsed)
	}
	if c.opts.Changes != nil {
		c.opts.Changes.Clear()
	}
	if c.opts.Store != nil {
		_ = c.opts.Store.Delete() // best-effort
	}
	c.running = false
	c.id = ""
	c.log.Debug("session stopped", zap.Duration("elapsed", elapsed))
	return elapsed, nil
}

// Pause freezes the stopwatch. No-op when already paused.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return ErrNotRunning
	}
	if c.paused {
		return nil
	}
	c.paused = true
	c.pauseStart = c.now()
	c.saveStateLocked()
	return nil
}

// Resume restarts the stopwatch after a pause. No-op when not paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return ErrNotRunning
	}
	if !c.paused {
		return nil
	}
	c.pausedAccum += c.now().Sub(c.pauseStart)
	c.paused = false
	c.saveStateLocked()
	return nil
}

// TogglePause flips between paused and running.
func (c *Controller) TogglePause() error {
	c.mu.Lock()
	paused := c.paused
	c.mu.Unlock()
	if paused {
		return c.Resume()
	}
	return c.Pause()
}

// Elapsed returns the working time so far: wall time minus pauses. Zero when
// no session is running.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	end := c.now()
	if c.paused {
		end = c.pauseStart
	}
	return end.Sub(c.startTime) - c.pausedAccum
}

// Running reports whether a session is in progress.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Paused reports whether the session is paused.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// saveStateLocked mirrors the in-memory session to the state file so other
// processes can see and signal it. Best-effort. Caller holds c.mu.
func (c *Controller) saveStateLocked() {
	if c.opts.Store == nil {
		return
	}
	st := &State{
		ID:            c.id,
		PID:           os.Getpid(),
		WorkDir:       c.opts.Root,
		StartTime:     c.startTime,
		Paused:        c.paused,
		PausedAccumMs: c.pausedAccum.Milliseconds(),
	}
	if c.paused {
		t := c.pauseStart
		st.PauseStart = &t
	}
	if err := c.opts.Store.Save(st); err != nil {
		c.log.Debug("state save failed", zap.Error(err))
	}
}
