package cmd

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current focus session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewStateStore(workRoot)
		if err != nil {
			return err
		}

		st, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no active session")
				return nil
			}
			return err
		}

		state := "running"
		if st.Paused {
			state = "paused"
		}
		cmd.Printf("State:    %s\n", state)
		cmd.Printf("Started:  %s\n", st.StartTime.Format(time.RFC3339))
		cmd.Printf("Worked:   %s\n", st.Elapsed(time.Now()).Round(time.Second))
		cmd.Printf("Backups:  %d\n", countArchives(config.BackupsDir(workRoot)))
		return nil
	},
}

// countArchives counts zip files in the backups directory; zero when absent.
func countArchives(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".zip") {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
