package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/archive"
	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/exclude"
	"github.com/fakeyudi/focuswatch/internal/journal"
	"github.com/fakeyudi/focuswatch/internal/session"
	"github.com/fakeyudi/focuswatch/internal/tracker"
	"github.com/fakeyudi/focuswatch/internal/tui"
	"github.com/fakeyudi/focuswatch/internal/unsaved"
)

var startPlain bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a focus session in this workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

// runSession assembles the backup engine and runs a session until stopped,
// either interactively (TUI) or headless (plain output plus signals).
func runSession(cmd *cobra.Command) error {
	store, err := session.NewStateStore(workRoot)
	if err != nil {
		return err
	}
	if st, err := store.Load(); err == nil {
		return fmt.Errorf("session already in progress (started at %s, pid %d)",
			st.StartTime.Format(time.RFC3339), st.PID)
	} else if !errors.Is(err, session.ErrNoSession) {
		return err
	}

	// User patterns are re-read on every exclusion check so edits to the
	// project config apply mid-session.
	patterns := func() []string {
		if project, err := config.LoadProject(workRoot); err == nil && project != nil && len(project.BackupExcludes) > 0 {
			return project.BackupExcludes
		}
		return cfg.BackupExcludes
	}
	filter := exclude.NewFilter(config.StateDirName, patterns)

	changes := tracker.NewChangeSet()
	jw := &journal.Writer{Dir: config.LogsDir(workRoot), Log: logger}
	builder := &archive.Builder{
		Root:     workRoot,
		Dir:      config.BackupsDir(workRoot),
		Filter:   filter,
		Changes:  changes,
		Registry: &unsaved.BackupStoreRegistry{},
		Journal:  jw,
		MaxItems: cfg.MaxItems(),
		Log:      logger,
	}
	watch := func(ctx context.Context) error {
		w := &tracker.Watcher{Root: workRoot, Filter: filter, Changes: changes, Log: logger}
		return w.Run(ctx)
	}

	ctrl := session.New(session.Options{
		Root:     workRoot,
		Interval: cfg.Interval(),
		Builder:  builder,
		Changes:  changes,
		Journal:  jw,
		Store:    store,
		Log:      logger,
		Now:      time.Now,
		Watch:    watch,
	})
	if err := ctrl.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, sessionSignals()...)
	defer signal.Stop(sigCh)

	var elapsed time.Duration
	if !startPlain && term.IsTerminal(os.Stdout.Fd()) {
		elapsed, err = runTimerUI(ctrl, builder, sigCh)
	} else {
		elapsed, err = runHeadless(cmd, ctrl, sigCh)
	}
	if err != nil {
		// Make sure the session is torn down even if the UI failed.
		if ctrl.Running() {
			_, _ = ctrl.Stop()
		}
		return err
	}

	cmd.Printf("Session stopped. Worked %s.\n", elapsed.Round(time.Second))
	return nil
}

// runTimerUI drives the Bubble Tea stopwatch until the session ends.
func runTimerUI(ctrl *session.Controller, builder *archive.Builder, sigCh <-chan os.Signal) (time.Duration, error) {
	p := tea.NewProgram(tui.NewTimer(ctrl, cfg.MinimalUI), tea.WithAltScreen())
	builder.OnArchive = func(name string, files int) {
		p.Send(tui.ArchiveMsg{Name: name, Files: files})
	}

	go func() {
		for sig := range sigCh {
			switch sig {
			case pauseSignal:
				_ = ctrl.Pause()
				p.Send(tui.RefreshMsg{})
			case resumeSignal:
				_ = ctrl.Resume()
				p.Send(tui.RefreshMsg{})
			default:
				p.Send(tui.StopRequestMsg{})
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	m := final.(tui.TimerModel)
	if m.StopErr != nil {
		return 0, m.StopErr
	}
	return m.FinalElapsed, nil
}

// runHeadless runs without a terminal UI; lifecycle is signal-driven.
func runHeadless(cmd *cobra.Command, ctrl *session.Controller, sigCh <-chan os.Signal) (time.Duration, error) {
	cmd.Printf("Session started in %s (pid %d). Stop with `focuswatch stop`.\n", workRoot, os.Getpid())
	for sig := range sigCh {
		switch sig {
		case pauseSignal:
			_ = ctrl.Pause()
			cmd.Println("Paused.")
		case resumeSignal:
			_ = ctrl.Resume()
			cmd.Println("Resumed.")
		default:
			return ctrl.Stop()
		}
	}
	return ctrl.Stop()
}

func init() {
	startCmd.Flags().BoolVar(&startPlain, "plain", false, "Disable the interactive timer UI")
	rootCmd.AddCommand(startCmd)
}
