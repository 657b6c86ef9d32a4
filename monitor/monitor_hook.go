//go:build !linux

package monitor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	hook "github.com/robotn/gohook"

	"modtap/tap"
)

// hookSource adapts the process-global OS event hook (a CGEventTap on
// darwin, a low-level keyboard hook on windows). The hook library never
// surfaces a delivery suspension, so Suspended events do not occur on
// this backend.
//
// The underlying hook is global: at most one hookSource can be
// registered per process.
type hookSource struct {
	mu         sync.Mutex
	registered bool
	stop       chan struct{}
	done       sync.WaitGroup
	enabled    atomic.Bool
}

// New returns the hook-backed source.
func New(opts Options) tap.Source {
	_ = opts // explicit device selection is a linux concern
	return &hookSource{}
}

func (s *hookSource) Register(handler func(tap.Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return errors.New("monitor: already registered")
	}

	events := hook.Start()
	stop := make(chan struct{})
	s.stop = stop
	s.done.Add(1)
	go func() {
		defer s.done.Done()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				out, keyEvent := translateHook(ev)
				if !keyEvent || !s.enabled.Load() {
					continue
				}
				handler(out)
			}
		}
	}()

	s.registered = true
	return nil
}

// translateHook keeps key transitions and drops everything else the
// hook reports (mouse, wheel, hook chatter). Pointer activity is not
// key activity and never interferes with a pending tap.
func translateHook(ev hook.Event) (tap.Event, bool) {
	var kind tap.Kind
	switch ev.Kind {
	case hook.KeyDown:
		kind = tap.KeyDown
	case hook.KeyUp:
		kind = tap.KeyUp
	case hook.KeyHold:
		kind = tap.KeyRepeat
	default:
		return tap.Event{}, false
	}
	when := ev.When
	if when.IsZero() {
		when = time.Now()
	}
	return tap.Event{Kind: kind, Key: tap.Key(ev.Rawcode), Time: when}, true
}

func (s *hookSource) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registered {
		return
	}
	hook.End()
	close(s.stop)
	s.done.Wait()
	s.registered = false
}

func (s *hookSource) Enable()  { s.enabled.Store(true) }
func (s *hookSource) Disable() { s.enabled.Store(false) }

// Diagnose checks whether monitoring can work on this host. The global
// hook cannot be probed without installing it, so report what to verify
// instead.
func Diagnose() (string, error) {
	return "global event hook available; if no keys register, grant Accessibility / Input Monitoring permission to this binary", nil
}
