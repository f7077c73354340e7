package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/session"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session's stopwatch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signalSession(pauseSignal); err != nil {
			return err
		}
		cmd.Println("Pause requested.")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signalSession(resumeSignal); err != nil {
			return err
		}
		cmd.Println("Resume requested.")
		return nil
	},
}

// signalSession delivers sig to the session-owning process.
func signalSession(sig os.Signal) error {
	if sig == nil {
		return fmt.Errorf("pause/resume from another terminal is not supported on this platform")
	}
	store, err := session.NewStateStore(workRoot)
	if err != nil {
		return err
	}
	st, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return fmt.Errorf("no active session")
		}
		return err
	}
	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("session process not found: %w", err)
	}
	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("signaling session process: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}
