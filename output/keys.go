package output

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/micmonay/keybd_event"

	"modtap/log"
	"modtap/tap"
)

// keySink taps a virtual keyboard. Emissions go through a buffered
// queue drained by one sender goroutine, so Emit returns immediately
// in the event path; a full queue drops the request, since the action
// is an idempotent user gesture and tapping again reissues it. Close
// injects whatever the queue still holds before returning.
type keySink struct {
	press   func(code int) error
	warmup  time.Duration
	queue   chan int
	done    chan struct{}
	drained chan struct{}
}

func newKeySink() (Sink, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	s := &keySink{
		press: func(code int) error {
			kb.SetKeys(code)
			return kb.Launching()
		},
		queue:   make(chan int, 8),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	if runtime.GOOS == "linux" {
		// give the fresh uinput device time to register with the host
		s.warmup = 2 * time.Second
	}
	go s.send()
	return s, nil
}

func (s *keySink) Emit(a tap.Action) {
	code, err := LookupAction(a)
	if err != nil {
		log.Warnf("output: %v", err)
		return
	}
	select {
	case s.queue <- code:
	default:
		log.Warn("output: queue full, dropping key action")
	}
}

func (s *keySink) send() {
	defer close(s.drained)
	if s.warmup > 0 {
		select {
		case <-time.After(s.warmup):
		case <-s.done:
		}
	}
	for {
		select {
		case <-s.done:
			for {
				select {
				case code := <-s.queue:
					s.inject(code)
				default:
					return
				}
			}
		case code := <-s.queue:
			s.inject(code)
		}
	}
}

func (s *keySink) inject(code int) {
	if err := s.press(code); err != nil {
		log.Errorf("output: synthesize key %d: %v", code, err)
	}
}

func (s *keySink) Close() error {
	close(s.done)
	<-s.drained
	return nil
}

// LookupAction maps an action onto the host keycode to tap. Beyond
// the named actions, "key:<code>" injects a raw host keycode for
// layouts the tables do not cover.
func LookupAction(a tap.Action) (int, error) {
	if code, ok := actionKeys[a]; ok {
		return code, nil
	}
	if raw, ok := strings.CutPrefix(string(a), "key:"); ok {
		code, err := strconv.Atoi(raw)
		if err != nil || code <= 0 {
			return 0, fmt.Errorf("bad raw key action %q", a)
		}
		return code, nil
	}
	return 0, fmt.Errorf("unknown action %q (use eisu, kana or key:<code>)", a)
}
