package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/journal"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the session and backup journals",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.LogsDir(workRoot)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			cmd.Println("no focuswatch logs in this workspace")
			return nil
		}

		for _, name := range []string{journal.SessionsFile, journal.BackupsFile} {
			path := filepath.Join(dir, name)
			cmd.Printf("## %s\n", path)
			data, err := os.ReadFile(path)
			if err != nil {
				cmd.Println("  (none)")
				continue
			}
			content := strings.TrimRight(string(data), "\n")
			if content == "" {
				cmd.Println("  (none)")
				continue
			}
			cmd.Println(content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
