// Package hotkey watches a global key chord used to toggle monitoring
// at runtime.
package hotkey

// Hotkey reports presses of a registered chord. Implementations watch
// input globally, independent of the tap engine, so the chord keeps
// working while monitoring is paused.
type Hotkey interface {
	Register() error
	Unregister()
	Presses() <-chan struct{}
}
