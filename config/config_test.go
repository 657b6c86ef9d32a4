package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 300, cfg.Tap.WindowMS)
	assert.Equal(t, "super", cfg.Keys.Modifier)
	assert.Equal(t, "eisu", cfg.Actions.Primary)
	assert.Equal(t, "kana", cfg.Actions.Secondary)
	assert.Equal(t, "keys", cfg.Output.Driver)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "modtap", "config.toml"), path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
enabled = false

[tap]
window_ms = 250

[keys]
modifier = "ctrl"
devices = ["/dev/input/event3"]

[actions]
primary = "kana"
secondary = "key:93"

[output]
driver = "fcitx"

[control]
hotkey = "ctrl+alt+space"

[log]
path = "/var/log/modtap"

[metrics]
listen = "127.0.0.1:9801"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 250, cfg.Tap.WindowMS)
	assert.Equal(t, "ctrl", cfg.Keys.Modifier)
	assert.Equal(t, []string{"/dev/input/event3"}, cfg.Keys.Devices)
	assert.Equal(t, "kana", cfg.Actions.Primary)
	assert.Equal(t, "key:93", cfg.Actions.Secondary)
	assert.Equal(t, "fcitx", cfg.Output.Driver)
	assert.Equal(t, "ctrl+alt+space", cfg.Control.Hotkey)
	assert.Equal(t, "/var/log/modtap", cfg.Log.Path)
	assert.Equal(t, "127.0.0.1:9801", cfg.Metrics.Listen)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[tap]
window_ms = 150
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Tap.WindowMS)
	assert.Equal(t, "super", cfg.Keys.Modifier)
	assert.Equal(t, "eisu", cfg.Actions.Primary)
	assert.True(t, cfg.Enabled)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "not toml {{{")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero window", func(c *Config) { c.Tap.WindowMS = 0 }, "window_ms"},
		{"negative window", func(c *Config) { c.Tap.WindowMS = -5 }, "window_ms"},
		{"unknown modifier", func(c *Config) { c.Keys.Modifier = "hyper" }, "keys.modifier"},
		{"empty primary action", func(c *Config) { c.Actions.Primary = "" }, "actions.primary"},
		{"empty secondary action", func(c *Config) { c.Actions.Secondary = "" }, "actions.secondary"},
		{"unknown primary action", func(c *Config) { c.Actions.Primary = "banana" }, "actions.primary"},
		{"unknown secondary action", func(c *Config) { c.Actions.Secondary = "katakana" }, "actions.secondary"},
		{"malformed raw key action", func(c *Config) { c.Actions.Primary = "key:abc" }, "actions.primary"},
		{"non-positive raw key action", func(c *Config) { c.Actions.Secondary = "key:0" }, "actions.secondary"},
		{"unknown driver", func(c *Config) { c.Output.Driver = "telepathy" }, "output.driver"},
		{"bad hotkey", func(c *Config) { c.Control.Hotkey = "m" }, "control.hotkey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want),
				"error %q should mention %q", err, tt.want)
		})
	}
}

func TestValidateAllowsEmptyHotkey(t *testing.T) {
	cfg := Default()
	cfg.Control.Hotkey = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateAllowsRawKeyAction(t *testing.T) {
	cfg := Default()
	cfg.Actions.Secondary = "key:93"
	assert.NoError(t, cfg.Validate())
}

func TestWindow(t *testing.T) {
	cfg := Default()
	cfg.Tap.WindowMS = 250
	assert.Equal(t, 250*time.Millisecond, cfg.Window())
}

func TestWatchReloadsOnValidChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[tap]
window_ms = 300
`)

	got := make(chan Config, 8)
	stop, err := Watch(path, func(c Config) { got <- c })
	require.NoError(t, err)
	defer stop()

	// An invalid edit must be skipped without a callback.
	require.NoError(t, os.WriteFile(path, []byte(`
[tap]
window_ms = -1
`), 0o600))
	time.Sleep(3 * debounceDelay)

	require.NoError(t, os.WriteFile(path, []byte(`
[tap]
window_ms = 120
`), 0o600))

	select {
	case cfg := <-got:
		assert.Equal(t, 120, cfg.Tap.WindowMS)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[tap]
window_ms = 300
`)

	got := make(chan Config, 8)
	stop, err := Watch(path, func(c Config) { got <- c })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o600))
	time.Sleep(3 * debounceDelay)

	select {
	case <-got:
		t.Fatal("reload fired for an unrelated file")
	default:
	}
}
