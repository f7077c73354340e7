package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/session"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the running focus session (takes a final backup first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return signalStop(cmd)
	},
}

// signalStop asks the session-owning process to shut down, then waits for
// the state file to disappear so the final backup has landed.
func signalStop(cmd *cobra.Command) error {
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
	if err == nil {
		err = proc.Signal(stopSignal())
	}
	if err != nil {
		// Owning process is gone; clean up the stale state file.
		_ = store.Delete()
		cmd.Println("Session process was gone; removed stale session state.")
		return nil
	}

	// The final synchronous build can take a moment on large change sets.
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.Load(); errors.Is(err, session.ErrNoSession) {
			cmd.Println("Session stopped.")
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	cmd.Printf("Stop requested (pid %d); session is still finishing its final backup.\n", st.PID)
	return nil
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
