//go:build !windows

package doctor

import "os/exec"

// Raw key monitoring can leave the terminal in a strange mode.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}
