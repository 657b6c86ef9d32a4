//go:build linux

package output

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"modtap/log"
	"modtap/tap"
)

const (
	fcitxService    = "org.fcitx.Fcitx5"
	fcitxPath       = dbus.ObjectPath("/controller")
	fcitxController = "org.fcitx.Fcitx.Controller1"
)

// fcitxSink drives the fcitx5 controller on the session bus:
// Deactivate for the alphanumeric action, Activate for kana. Bus calls
// go through the same queue-and-sender shape as the key sink so Emit
// never waits on D-Bus, and Close flushes the queue the same way.
type fcitxSink struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	queue   chan string
	done    chan struct{}
	drained chan struct{}
}

func newFcitxSink(actions []tap.Action) (Sink, error) {
	for _, a := range actions {
		if _, err := fcitxMethod(a); err != nil {
			return nil, err
		}
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	s := &fcitxSink{
		conn:    conn,
		obj:     conn.Object(fcitxService, fcitxPath),
		queue:   make(chan string, 8),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go s.send()
	return s, nil
}

func fcitxMethod(a tap.Action) (string, error) {
	switch a {
	case tap.ActionEisu:
		return fcitxController + ".Deactivate", nil
	case tap.ActionKana:
		return fcitxController + ".Activate", nil
	}
	return "", fmt.Errorf("fcitx driver cannot express action %q (use eisu or kana)", a)
}

func (s *fcitxSink) Emit(a tap.Action) {
	method, err := fcitxMethod(a)
	if err != nil {
		log.Warnf("output: %v", err)
		return
	}
	select {
	case s.queue <- method:
	default:
		log.Warn("output: queue full, dropping fcitx call")
	}
}

func (s *fcitxSink) send() {
	defer close(s.drained)
	for {
		select {
		case <-s.done:
			for {
				select {
				case method := <-s.queue:
					s.call(method)
				default:
					return
				}
			}
		case method := <-s.queue:
			s.call(method)
		}
	}
}

func (s *fcitxSink) call(method string) {
	if call := s.obj.Call(method, 0); call.Err != nil {
		log.Errorf("output: %s: %v", method, call.Err)
	}
}

func (s *fcitxSink) Close() error {
	close(s.done)
	<-s.drained
	return s.conn.Close()
}
