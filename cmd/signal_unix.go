//go:build unix

package cmd

import (
	"os"
	"syscall"
)

// Cross-process session control: the owning process listens for these, the
// stop/pause/resume commands send them at the PID from the state file.
var (
	pauseSignal  os.Signal = syscall.SIGUSR1
	resumeSignal os.Signal = syscall.SIGUSR2
)

func sessionSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2}
}

func stopSignal() os.Signal { return syscall.SIGTERM }
