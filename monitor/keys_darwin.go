//go:build darwin

package monitor

import (
	"fmt"

	"modtap/tap"
)

// Left and right virtual keycodes per watchable modifier, as the hook
// reports them.
var modifierKeys = map[string][2]tap.Key{
	"super": {55, 54}, // kVK_Command, kVK_RightCommand
	"ctrl":  {59, 62}, // kVK_Control, kVK_RightControl
	"alt":   {58, 61}, // kVK_Option, kVK_RightOption
	"shift": {56, 60}, // kVK_Shift, kVK_RightShift
}

// LookupModifier resolves a configured modifier name to the left and
// right key codes the source reports for it. Accepted names: super
// (aliases cmd, win, meta), ctrl (control), alt (option), shift.
func LookupModifier(name string) (left, right tap.Key, err error) {
	keys, ok := modifierKeys[normalizeModifier(name)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown modifier %q (use cmd, ctrl, option or shift)", name)
	}
	return keys[0], keys[1], nil
}
