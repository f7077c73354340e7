package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/focuswatch/internal/config"
	"github.com/fakeyudi/focuswatch/internal/logx"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// workRoot is the absolute workspace root all commands operate on.
var workRoot string

// logger is the diagnostic logger, a no-op unless --log is set.
var logger *zap.Logger

var dirFlag string
var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "focuswatch",
	Short: "Track focus sessions and snapshot changed files into zip backups",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(dirFlag)
		if err != nil {
			return fmt.Errorf("resolving workspace root: %w", err)
		}
		workRoot = root

		logger, err = logx.GetLogger(logLevelFlag)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevelFlag, err)
		}

		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject(workRoot)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", ".", "Workspace root to track")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log", "", "Diagnostic log level (debug, info; empty disables)")
}
