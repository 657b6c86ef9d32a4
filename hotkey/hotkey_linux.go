//go:build linux

package hotkey

import (
	"fmt"
	"sync"

	"github.com/holoplot/go-evdev"

	"modtap/config"
	"modtap/monitor"
	"modtap/tap"
)

type linuxHotkey struct {
	combo   config.Combo
	presses chan struct{}
	devices []*evdev.InputDevice
	once    sync.Once
}

// New watches the chord on every keyboard device. Devices are opened
// separately from the tap engine's monitor so the chord still fires
// while monitoring is paused.
func New(combo config.Combo) Hotkey {
	return &linuxHotkey{
		combo:   combo,
		presses: make(chan struct{}, 1),
	}
}

func (h *linuxHotkey) Register() error {
	key, err := monitor.LookupKey(h.combo.Key)
	if err != nil {
		return err
	}
	keyboards, err := monitor.ListKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	for _, kb := range keyboards {
		dev, err := evdev.Open(kb.Path)
		if err != nil {
			continue
		}
		h.devices = append(h.devices, dev)
		go h.readEvents(dev, key)
	}
	if len(h.devices) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

// readEvents exits when Unregister closes the device.
func (h *linuxHotkey) readEvents(dev *evdev.InputDevice, key tap.Key) {
	tr := newTracker(h.combo, key)
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		if tr.handle(tap.Key(ev.Code), ev.Value) {
			select {
			case h.presses <- struct{}{}:
			default:
			}
		}
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		for _, dev := range h.devices {
			dev.Close()
		}
	})
}

func (h *linuxHotkey) Presses() <-chan struct{} {
	return h.presses
}

// comboModifiers folds left and right instances to the canonical names
// ParseCombo produces.
var comboModifiers = map[tap.Key]string{
	tap.Key(evdev.KEY_LEFTCTRL):   "ctrl",
	tap.Key(evdev.KEY_RIGHTCTRL):  "ctrl",
	tap.Key(evdev.KEY_LEFTSHIFT):  "shift",
	tap.Key(evdev.KEY_RIGHTSHIFT): "shift",
	tap.Key(evdev.KEY_LEFTALT):    "alt",
	tap.Key(evdev.KEY_RIGHTALT):   "alt",
	tap.Key(evdev.KEY_LEFTMETA):   "super",
	tap.Key(evdev.KEY_RIGHTMETA):  "super",
}

// tracker holds chord state for one device.
type tracker struct {
	combo   config.Combo
	key     tap.Key
	held    map[string]bool
	keyHeld bool
}

func newTracker(combo config.Combo, key tap.Key) *tracker {
	return &tracker{combo: combo, key: key, held: make(map[string]bool)}
}

// handle consumes one key event and reports whether the chord fired.
// Repeats (value 2) keep modifiers held without re-firing the key.
func (t *tracker) handle(code tap.Key, value int32) bool {
	pressed := value == 1
	released := value == 0

	if name, ok := comboModifiers[code]; ok {
		t.held[name] = pressed || (!released && t.held[name])
		return false
	}
	if code != t.key {
		return false
	}
	if pressed && !t.keyHeld && t.satisfied() {
		t.keyHeld = true
		return true
	}
	if released {
		t.keyHeld = false
	}
	return false
}

func (t *tracker) satisfied() bool {
	for _, m := range t.combo.Mods {
		if !t.held[m] {
			return false
		}
	}
	return true
}
