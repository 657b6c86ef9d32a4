//go:build !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"modtap/config"
)

type xHotkey struct {
	combo   config.Combo
	hk      *hotkey.Hotkey
	presses chan struct{}
	stop    chan struct{}
}

// New registers the chord with the OS hotkey facility.
func New(combo config.Combo) Hotkey {
	return &xHotkey{
		combo:   combo,
		presses: make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	mods, err := parseMods(h.combo.Mods)
	if err != nil {
		return err
	}
	key, err := parseKey(h.combo.Key)
	if err != nil {
		return err
	}

	h.hk = hotkey.New(mods, key)
	if err := h.hk.Register(); err != nil {
		return err
	}
	h.stop = make(chan struct{})
	go func() {
		for {
			select {
			case <-h.stop:
				return
			case <-h.hk.Keydown():
				select {
				case h.presses <- struct{}{}:
				default:
				}
			}
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	if h.hk == nil {
		return
	}
	close(h.stop)
	h.hk.Unregister()
	h.hk = nil
}

func (h *xHotkey) Presses() <-chan struct{} {
	return h.presses
}

// parseMods maps canonical chord modifiers through the per-OS modMap.
func parseMods(names []string) ([]hotkey.Modifier, error) {
	var mods []hotkey.Modifier
	for _, n := range names {
		m, ok := modMap[n]
		if !ok {
			return nil, fmt.Errorf("modifier %q not supported on this platform", n)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

var keyMap = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"space": hotkey.KeySpace,
	"enter": hotkey.KeyReturn,
	"tab":   hotkey.KeyTab,
	"esc":   hotkey.KeyEscape,
}

func parseKey(name string) (hotkey.Key, error) {
	k, ok := keyMap[name]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}
