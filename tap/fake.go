package tap

import (
	"sync"
	"time"
)

// FakeSource scripts source notifications for tests. The Sim* helpers
// invoke the registered handler synchronously on the caller's
// goroutine, which stands in for the delivery goroutine.
type FakeSource struct {
	// RegisterErr, when set, is returned by Register.
	RegisterErr error

	mu          sync.Mutex
	handler     func(Event)
	registers   int
	unregisters int
	enables     int
	disables    int
}

func NewFakeSource() *FakeSource { return &FakeSource{} }

func (f *FakeSource) Register(h func(Event)) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	f.registers++
	return nil
}

func (f *FakeSource) Unregister() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = nil
	f.unregisters++
}

func (f *FakeSource) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enables++
}

func (f *FakeSource) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disables++
}

func (f *FakeSource) SimKeyDown(k Key, at time.Time) { f.deliver(Event{KeyDown, k, at}) }
func (f *FakeSource) SimKeyUp(k Key, at time.Time)   { f.deliver(Event{KeyUp, k, at}) }
func (f *FakeSource) SimRepeat(k Key, at time.Time)  { f.deliver(Event{KeyRepeat, k, at}) }
func (f *FakeSource) SimSuspend()                    { f.deliver(Event{Kind: Suspended}) }

func (f *FakeSource) deliver(ev Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// Registered reports whether a handler is currently subscribed.
func (f *FakeSource) Registered() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

func (f *FakeSource) Registers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers
}

func (f *FakeSource) Unregisters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unregisters
}

func (f *FakeSource) Enables() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enables
}

func (f *FakeSource) Disables() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disables
}

// FakeSink records emitted actions.
type FakeSink struct {
	mu      sync.Mutex
	actions []Action
}

func NewFakeSink() *FakeSink { return &FakeSink{} }

func (f *FakeSink) Emit(a Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, a)
}

// Actions returns a copy of everything emitted so far.
func (f *FakeSink) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action(nil), f.actions...)
}
