//go:build !linux

package main

import "fmt"

// runSetup has nothing to configure off Linux: monitoring uses a global
// keyboard hook, not per-device paths.
func runSetup() int {
	fmt.Println("Nothing to set up on this platform.")
	fmt.Println("modtap watches all keyboards through a global hook; device")
	fmt.Println("selection only applies on Linux.")
	return 0
}
