//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The global hotkey event loop must own the process main thread on
	// macOS and Windows; run() is parked on a worker goroutine.
	mainthread.Init(run)
}
