// Package monitor implements tap.Source over the host keyboard stream:
// evdev devices on linux, the process-global event hook elsewhere.
package monitor

import "strings"

// Options configures the platform source.
type Options struct {
	// Devices lists explicit input device paths to watch. Empty means
	// discover keyboards automatically. Only meaningful on linux.
	Devices []string
}

// normalizeModifier folds the accepted aliases onto canonical names.
func normalizeModifier(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "cmd", "win", "meta":
		return "super"
	case "control":
		return "ctrl"
	case "option":
		return "alt"
	default:
		return n
	}
}
