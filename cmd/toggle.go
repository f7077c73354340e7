package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focuswatch/internal/session"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Start a session if none is running, stop it otherwise",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewStateStore(workRoot)
		if err != nil {
			return err
		}
		if _, err := store.Load(); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return runSession(cmd)
			}
			return err
		}
		return signalStop(cmd)
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
