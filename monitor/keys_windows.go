//go:build windows

package monitor

import (
	"fmt"

	"modtap/tap"
)

// Left and right virtual-key codes per watchable modifier, as the hook
// reports them.
var modifierKeys = map[string][2]tap.Key{
	"super": {0x5B, 0x5C}, // VK_LWIN, VK_RWIN
	"ctrl":  {0xA2, 0xA3}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {0xA4, 0xA5}, // VK_LMENU, VK_RMENU
	"shift": {0xA0, 0xA1}, // VK_LSHIFT, VK_RSHIFT
}

// LookupModifier resolves a configured modifier name to the left and
// right key codes the source reports for it. Accepted names: super
// (aliases cmd, win, meta), ctrl (control), alt (option), shift.
func LookupModifier(name string) (left, right tap.Key, err error) {
	keys, ok := modifierKeys[normalizeModifier(name)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown modifier %q (use win, ctrl, alt or shift)", name)
	}
	return keys[0], keys[1], nil
}
