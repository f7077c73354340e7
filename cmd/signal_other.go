//go:build !unix

package cmd

import "os"

// Non-unix platforms only support interrupt-driven stop; pause and resume
// from another terminal are unavailable.
var (
	pauseSignal  os.Signal
	resumeSignal os.Signal
)

func sessionSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

func stopSignal() os.Signal { return os.Interrupt }
