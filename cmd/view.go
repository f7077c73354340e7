package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/journal"
	"github.com/fakeyudi/focuswatch/internal/tui"
)

var viewPlain bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the session and backup history",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.LogsDir(workRoot)
		sessions, err := journal.ReadSessions(dir)
		if err != nil {
			return err
		}
		backups, err := journal.ReadBackups(dir)
		if err != nil {
			return err
		}

		if viewPlain {
			printJournals(cmd, sessions, backups)
			return nil
		}
		return tui.RunView(sessions, backups, dir)
	},
}

// printJournals writes a plain-text summary to stdout.
func printJournals(cmd *cobra.Command, sessions []journal.SessionRecord, backups []journal.BackupRecord) {
	cmd.Println("## Sessions")
	if len(sessions) == 0 {
		cmd.Println("  (none)")
	}
	for _, rec := range sessions {
		line := fmt.Sprintf("  %s  %-5s", rec.At, rec.Event)
		if rec.DurationMs != nil {
			line += "  " + (time.Duration(*rec.DurationMs) * time.Millisecond).Round(time.Second).String()
		}
		cmd.Println(line)
	}
	cmd.Println()

	cmd.Println("## Backups")
	if len(backups) == 0 {
		cmd.Println("  (none)")
	}
	for _, rec := range backups {
		cmd.Printf("  %s  %s  (%d files)\n", rec.At, rec.Zip, rec.Files)
	}
}

func init() {
	viewCmd.Flags().BoolVar(&viewPlain, "plain", false, "Print plain text instead of the TUI")
	rootCmd.AddCommand(viewCmd)
}
