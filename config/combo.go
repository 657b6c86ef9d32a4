package config

import (
	"fmt"
	"strings"
)

// Combo is a parsed hotkey chord: one or more modifiers plus a key.
// Modifier names are canonical (ctrl, shift, alt, super); the key is a
// lowercase name resolved by the platform hotkey backend.
type Combo struct {
	Mods []string
	Key  string
}

// ParseCombo parses a '+' separated chord like "ctrl+shift+m". The
// last element is the key; everything before it must be a modifier.
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(s, "+")
	var c Combo
	for i, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			return Combo{}, fmt.Errorf("empty element in hotkey %q", s)
		}
		if i == len(parts)-1 {
			c.Key = p
			break
		}
		switch p {
		case "ctrl", "control":
			c.Mods = append(c.Mods, "ctrl")
		case "shift":
			c.Mods = append(c.Mods, "shift")
		case "alt", "option":
			c.Mods = append(c.Mods, "alt")
		case "super", "cmd", "win", "meta":
			c.Mods = append(c.Mods, "super")
		default:
			return Combo{}, fmt.Errorf("unknown modifier %q in hotkey %q", p, s)
		}
	}
	if len(c.Mods) == 0 {
		return Combo{}, fmt.Errorf("hotkey %q needs at least one modifier", s)
	}
	switch c.Key {
	case "ctrl", "control", "shift", "alt", "option", "super", "cmd", "win", "meta":
		return Combo{}, fmt.Errorf("hotkey %q ends in a modifier, expected a key", s)
	}
	return c, nil
}

// HasMod reports whether the chord requires the canonical modifier.
func (c Combo) HasMod(name string) bool {
	for _, m := range c.Mods {
		if m == name {
			return true
		}
	}
	return false
}
