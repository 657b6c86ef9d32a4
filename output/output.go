// Package output synthesizes the input-method switch a tap asks for,
// either as a virtual key press+release or as an IME controller call.
package output

import (
	"fmt"

	"modtap/tap"
)

// Sink extends tap.Sink with teardown. The sink outlives engine
// sessions; Close synthesizes every emission already accepted before
// returning, so taps decided just before teardown still land. Close
// a sink only after stopping the engine that feeds it, and only once.
type Sink interface {
	tap.Sink
	Close() error
}

// New builds the configured sink and verifies it can express every
// action it will be asked for. Driver "keys" taps a virtual keyboard;
// "fcitx" drives the fcitx5 controller over D-Bus (linux only).
func New(driver string, actions []tap.Action) (Sink, error) {
	switch driver {
	case "", "keys":
		s, err := newKeySink()
		if err != nil {
			return nil, err
		}
		for _, a := range actions {
			if _, err := LookupAction(a); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	case "fcitx":
		return newFcitxSink(actions)
	default:
		return nil, fmt.Errorf("unknown output driver %q (use keys or fcitx)", driver)
	}
}
