//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// Canonical chord modifier names to macOS hotkey modifiers.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModOption,
	"super": hotkey.ModCmd,
}
