//go:build !windows

// Package shutdown delivers the signals that should end the daemon.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify returns a channel that receives a value when the process is
// asked to terminate, so the caller can unwind monitoring and synthesis
// before exiting.
func Notify() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
