//go:build windows

package output

import "modtap/tap"

// IME conversion virtual-key codes.
var actionKeys = map[tap.Action]int{
	tap.ActionEisu: 0x1D, // VK_NONCONVERT
	tap.ActionKana: 0x1C, // VK_CONVERT
}
