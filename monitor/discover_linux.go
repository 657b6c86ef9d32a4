//go:build linux

package monitor

import (
	"os"
	"path/filepath"
	"strings"
)

// Keyboard is one keyboard-capable input device.
type Keyboard struct {
	Path string
	Name string
}

// ListKeyboards scans /dev/input for devices that look like real
// keyboards. It reads capabilities from sysfs, which needs no special
// permissions, so discovery works even when opening the devices later
// does not.
func ListKeyboards() ([]Keyboard, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []Keyboard
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if !isKeyboard(e.Name()) {
			continue
		}
		keyboards = append(keyboards, Keyboard{
			Path: filepath.Join("/dev/input", e.Name()),
			Name: deviceName(e.Name()),
		})
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	// Keyboards advertise a long EV_KEY bitmask; mice and buttons a
	// short one.
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

func deviceName(eventName string) string {
	namePath := filepath.Join("/sys/class/input", eventName, "device", "name")
	data, err := os.ReadFile(namePath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
