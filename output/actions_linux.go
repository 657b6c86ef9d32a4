//go:build linux

package output

import "modtap/tap"

// evdev codes for the JIS input-method keys: muhenkan leaves
// conversion mode, henkan enters it. IMEs (fcitx, ibus/mozc) bind
// these to alphanumeric/kana out of the box.
var actionKeys = map[tap.Action]int{
	tap.ActionEisu: 94, // KEY_MUHENKAN
	tap.ActionKana: 92, // KEY_HENKAN
}
