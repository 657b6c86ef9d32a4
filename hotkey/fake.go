package hotkey

// FakeHotkey scripts chord presses for tests. SimPress feeds the same
// channel Presses exposes, standing in for the platform watcher.
type FakeHotkey struct {
	presses chan struct{}
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{presses: make(chan struct{}, 1)}
}

func (f *FakeHotkey) Register() error          { return nil }
func (f *FakeHotkey) Unregister()              {}
func (f *FakeHotkey) Presses() <-chan struct{} { return f.presses }

// SimPress delivers one chord press.
func (f *FakeHotkey) SimPress() { f.presses <- struct{}{} }
