// Package config loads the daemon configuration and watches it for
// changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"modtap/monitor"
	"modtap/output"
	"modtap/tap"
)

// Config is the daemon configuration, read from TOML.
type Config struct {
	// Enabled starts monitoring at launch. The toggle hotkey and config
	// reloads flip monitoring at runtime without touching this file.
	Enabled bool       `toml:"enabled"`
	Tap     TapCfg     `toml:"tap"`
	Keys    KeysCfg    `toml:"keys"`
	Actions ActionsCfg `toml:"actions"`
	Output  OutputCfg  `toml:"output"`
	Control ControlCfg `toml:"control"`
	Log     LogCfg     `toml:"log"`
	Metrics MetricsCfg `toml:"metrics"`
}

type TapCfg struct {
	// WindowMS is the longest press→release interval, in milliseconds,
	// still treated as a tap.
	WindowMS int `toml:"window_ms"`
}

type KeysCfg struct {
	// Modifier names the watched key: super (aliases cmd, win), ctrl,
	// alt or shift. Left and right instances switch independently.
	Modifier string `toml:"modifier"`
	// Devices pins monitoring to explicit input device paths instead of
	// discovering keyboards. Linux only.
	Devices []string `toml:"devices"`
}

type ActionsCfg struct {
	// Primary fires on a left tap, Secondary on a right tap. Named
	// actions are eisu and kana; "key:<code>" taps a raw host keycode.
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
}

type OutputCfg struct {
	// Driver is "keys" (synthetic key tap) or "fcitx" (D-Bus controller,
	// linux only).
	Driver string `toml:"driver"`
}

type ControlCfg struct {
	// Hotkey toggles monitoring at runtime, e.g. "ctrl+shift+m".
	// Empty disables the toggle.
	Hotkey string `toml:"hotkey"`
}

type LogCfg struct {
	// Path overrides the log directory.
	Path string `toml:"path"`
}

type MetricsCfg struct {
	// Listen serves Prometheus metrics and pprof on this address when
	// non-empty, e.g. "127.0.0.1:9801".
	Listen string `toml:"listen"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Enabled: true,
		Tap:     TapCfg{WindowMS: 300},
		Keys:    KeysCfg{Modifier: "super"},
		Actions: ActionsCfg{Primary: "eisu", Secondary: "kana"},
		Output:  OutputCfg{Driver: "keys"},
		Control: ControlCfg{Hotkey: "ctrl+shift+m"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/modtap/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "modtap", "config.toml"), nil
}

// Load reads path, falls back to defaults when the file does not
// exist, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the daemon cannot honor.
func (c Config) Validate() error {
	if c.Tap.WindowMS <= 0 {
		return fmt.Errorf("tap.window_ms must be positive, got %d", c.Tap.WindowMS)
	}
	if _, _, err := monitor.LookupModifier(c.Keys.Modifier); err != nil {
		return fmt.Errorf("keys.modifier: %w", err)
	}
	if _, err := output.LookupAction(tap.Action(c.Actions.Primary)); err != nil {
		return fmt.Errorf("actions.primary: %w", err)
	}
	if _, err := output.LookupAction(tap.Action(c.Actions.Secondary)); err != nil {
		return fmt.Errorf("actions.secondary: %w", err)
	}
	switch c.Output.Driver {
	case "", "keys", "fcitx":
	default:
		return fmt.Errorf("output.driver %q unknown (use keys or fcitx)", c.Output.Driver)
	}
	if c.Control.Hotkey != "" {
		if _, err := ParseCombo(c.Control.Hotkey); err != nil {
			return fmt.Errorf("control.hotkey: %w", err)
		}
	}
	return nil
}

// Window returns the tap window as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.Tap.WindowMS) * time.Millisecond
}
