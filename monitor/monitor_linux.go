//go:build linux

package monitor

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holoplot/go-evdev"

	"modtap/log"
	"modtap/tap"
)

// evdevSource reads keyboards from /dev/input with one goroutine per
// device and serializes everything through a single dispatch goroutine,
// so the consumer sees a strictly ordered, single-threaded stream.
//
// TODO: rescan on hotplug; for now a keyboard plugged in later needs a
// monitoring restart to be picked up.
type evdevSource struct {
	opts Options

	mu         sync.Mutex
	registered bool
	devices    []openDevice
	dispatcher sync.WaitGroup
	stop       chan struct{}
	enabled    atomic.Bool
}

type openDevice struct {
	path string
	dev  *evdev.InputDevice
}

// New returns the evdev-backed source.
func New(opts Options) tap.Source {
	return &evdevSource{opts: opts}
}

func (s *evdevSource) Register(handler func(tap.Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return errors.New("monitor: already registered")
	}

	paths := s.opts.Devices
	if len(paths) == 0 {
		keyboards, err := ListKeyboards()
		if err != nil {
			return fmt.Errorf("finding keyboards: %w", err)
		}
		for _, kb := range keyboards {
			paths = append(paths, kb.Path)
		}
	}
	if len(paths) == 0 {
		return errors.New("no keyboard devices found (is user in 'input' group?)")
	}

	var devices []openDevice
	var lastErr error
	for _, p := range paths {
		d, err := evdev.Open(p)
		if err != nil {
			lastErr = err
			log.Warnf("monitor: open %s: %v", p, err)
			continue
		}
		devices = append(devices, openDevice{path: p, dev: d})
	}
	if len(devices) == 0 {
		if errors.Is(lastErr, fs.ErrPermission) {
			return fmt.Errorf("open keyboard devices (run: sudo usermod -aG input $USER, then re-login): %w",
				tap.ErrPermissionDenied)
		}
		return fmt.Errorf("open keyboard devices: %w", lastErr)
	}

	// Channels are owned by this session and handed to the goroutines
	// by value: a reader that outlives Unregister (blocked in a read
	// syscall until its device wakes) can never touch a later session.
	events := make(chan tap.Event, 256)
	stop := make(chan struct{})
	s.devices = devices
	s.stop = stop

	for _, od := range devices {
		go readDevice(od, events, stop)
	}
	s.dispatcher.Add(1)
	go s.dispatch(handler, events, stop)

	s.registered = true
	log.Infof("monitor: watching %d keyboard device(s)", len(devices))
	return nil
}

func readDevice(od openDevice, events chan<- tap.Event, stop <-chan struct{}) {
	for {
		ev, err := od.dev.ReadOne()
		if err != nil {
			select {
			case <-stop:
			default:
				log.Warnf("monitor: %s: %v", od.path, err)
			}
			return
		}
		out, ok := translate(ev)
		if !ok {
			continue
		}
		select {
		case events <- out:
		case <-stop:
			return
		}
	}
}

func (s *evdevSource) dispatch(handler func(tap.Event), events <-chan tap.Event, stop <-chan struct{}) {
	defer s.dispatcher.Done()
	for {
		select {
		case <-stop:
			return
		case ev := <-events:
			if s.enabled.Load() {
				handler(ev)
			}
		}
	}
}

// translate maps one raw evdev event onto the source contract.
// SYN_DROPPED means the kernel overran its event buffer and dropped
// events: the linux shape of a delivery suspension.
func translate(ev *evdev.InputEvent) (tap.Event, bool) {
	switch {
	case ev.Type == evdev.EV_KEY:
		var kind tap.Kind
		switch ev.Value {
		case 1:
			kind = tap.KeyDown
		case 0:
			kind = tap.KeyUp
		case 2:
			kind = tap.KeyRepeat
		default:
			return tap.Event{}, false
		}
		return tap.Event{
			Kind: kind,
			Key:  tap.Key(ev.Code),
			Time: time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*1000),
		}, true
	case ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_DROPPED:
		return tap.Event{Kind: tap.Suspended}, true
	}
	return tap.Event{}, false
}

// Unregister stops dispatch and returns once no handler call is in
// flight. Readers stuck in a blocking read on an idle device linger
// until the device next wakes, then exit on their closed stop channel;
// they hold only this session's channels.
func (s *evdevSource) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registered {
		return
	}
	close(s.stop)
	for _, od := range s.devices {
		od.dev.Close()
	}
	s.dispatcher.Wait()
	s.devices = nil
	s.registered = false
}

func (s *evdevSource) Enable()  { s.enabled.Store(true) }
func (s *evdevSource) Disable() { s.enabled.Store(false) }

// Diagnose checks whether monitoring can work on this host.
func Diagnose() (string, error) {
	keyboards, err := ListKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, kb := range keyboards {
		d, err := evdev.Open(kb.Path)
		if err == nil {
			d.Close()
			opened = kb.Path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
