//go:build windows

// Package shutdown delivers the signals that should end the daemon.
package shutdown

import (
	"os"
	"os/signal"
)

// Notify returns a channel that receives a value when the process is
// asked to terminate. Windows has no SIGTERM; console interrupt is the
// only signal worth waiting for.
func Notify() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
