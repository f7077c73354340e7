package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/config"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Reveal the backup archive folder in the OS file browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.BackupsDir(workRoot)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating backups directory: %w", err)
		}

		var opener string
		switch runtime.GOOS {
		case "darwin":
			opener = "open"
		case "windows":
			opener = "explorer"
		default:
			opener = "xdg-open"
		}
		if err := exec.Command(opener, dir).Start(); err != nil {
			// No file browser available; the path is still useful.
			cmd.Println(dir)
			return nil
		}
		cmd.Printf("Opened %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}
