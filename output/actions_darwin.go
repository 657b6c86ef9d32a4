//go:build darwin

package output

import "modtap/tap"

// JIS keyboard virtual keycodes; macOS switches the input source on
// these regardless of the physical layout.
var actionKeys = map[tap.Action]int{
	tap.ActionEisu: 0x66, // kVK_JIS_Eisu
	tap.ActionKana: 0x68, // kVK_JIS_Kana
}
