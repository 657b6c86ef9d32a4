//go:build linux

package monitor

import (
	"fmt"

	"github.com/holoplot/go-evdev"

	"modtap/tap"
)

// Left and right evdev codes per watchable modifier.
var modifierKeys = map[string][2]tap.Key{
	"super": {tap.Key(evdev.KEY_LEFTMETA), tap.Key(evdev.KEY_RIGHTMETA)},
	"ctrl":  {tap.Key(evdev.KEY_LEFTCTRL), tap.Key(evdev.KEY_RIGHTCTRL)},
	"alt":   {tap.Key(evdev.KEY_LEFTALT), tap.Key(evdev.KEY_RIGHTALT)},
	"shift": {tap.Key(evdev.KEY_LEFTSHIFT), tap.Key(evdev.KEY_RIGHTSHIFT)},
}

// LookupModifier resolves a configured modifier name to the left and
// right key codes the source reports for it. Accepted names: super
// (aliases cmd, win, meta), ctrl (control), alt (option), shift.
func LookupModifier(name string) (left, right tap.Key, err error) {
	keys, ok := modifierKeys[normalizeModifier(name)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown modifier %q (use super, ctrl, alt or shift)", name)
	}
	return keys[0], keys[1], nil
}

var namedKeys = map[string]tap.Key{
	"a": tap.Key(evdev.KEY_A), "b": tap.Key(evdev.KEY_B), "c": tap.Key(evdev.KEY_C),
	"d": tap.Key(evdev.KEY_D), "e": tap.Key(evdev.KEY_E), "f": tap.Key(evdev.KEY_F),
	"g": tap.Key(evdev.KEY_G), "h": tap.Key(evdev.KEY_H), "i": tap.Key(evdev.KEY_I),
	"j": tap.Key(evdev.KEY_J), "k": tap.Key(evdev.KEY_K), "l": tap.Key(evdev.KEY_L),
	"m": tap.Key(evdev.KEY_M), "n": tap.Key(evdev.KEY_N), "o": tap.Key(evdev.KEY_O),
	"p": tap.Key(evdev.KEY_P), "q": tap.Key(evdev.KEY_Q), "r": tap.Key(evdev.KEY_R),
	"s": tap.Key(evdev.KEY_S), "t": tap.Key(evdev.KEY_T), "u": tap.Key(evdev.KEY_U),
	"v": tap.Key(evdev.KEY_V), "w": tap.Key(evdev.KEY_W), "x": tap.Key(evdev.KEY_X),
	"y": tap.Key(evdev.KEY_Y), "z": tap.Key(evdev.KEY_Z),
	"0": tap.Key(evdev.KEY_0), "1": tap.Key(evdev.KEY_1), "2": tap.Key(evdev.KEY_2),
	"3": tap.Key(evdev.KEY_3), "4": tap.Key(evdev.KEY_4), "5": tap.Key(evdev.KEY_5),
	"6": tap.Key(evdev.KEY_6), "7": tap.Key(evdev.KEY_7), "8": tap.Key(evdev.KEY_8),
	"9": tap.Key(evdev.KEY_9),
	"f1": tap.Key(evdev.KEY_F1), "f2": tap.Key(evdev.KEY_F2), "f3": tap.Key(evdev.KEY_F3),
	"f4": tap.Key(evdev.KEY_F4), "f5": tap.Key(evdev.KEY_F5), "f6": tap.Key(evdev.KEY_F6),
	"f7": tap.Key(evdev.KEY_F7), "f8": tap.Key(evdev.KEY_F8), "f9": tap.Key(evdev.KEY_F9),
	"f10": tap.Key(evdev.KEY_F10), "f11": tap.Key(evdev.KEY_F11), "f12": tap.Key(evdev.KEY_F12),
	"space": tap.Key(evdev.KEY_SPACE),
	"enter": tap.Key(evdev.KEY_ENTER),
	"tab":   tap.Key(evdev.KEY_TAB),
	"esc":   tap.Key(evdev.KEY_ESC),
}

// LookupKey resolves a non-modifier key name used in a hotkey combo.
func LookupKey(name string) (tap.Key, error) {
	k, ok := namedKeys[name]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}
