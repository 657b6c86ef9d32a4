//go:build windows

package hotkey

import "golang.design/x/hotkey"

// Canonical chord modifier names to Windows hotkey modifiers.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModAlt,
	"super": hotkey.ModWin,
}
