// Package tap decides whether a modifier-key release was a lone short
// tap and, only then, asks a sink to synthesize an input-method switch.
// Held shortcuts and long presses pass through untouched, as does any
// press interleaved with other key activity; the engine observes the
// stream, it never consumes or reorders it.
package tap

import (
	"errors"
	"time"
)

// Side selects one of the two independently tracked instances of the
// watched modifier key.
type Side int

const (
	// Primary is the physically left instance.
	Primary Side = iota
	// Secondary is the physically right instance.
	Secondary
)

func (s Side) String() string {
	if s == Secondary {
		return "secondary"
	}
	return "primary"
}

// Key identifies a physical key as reported by the event source:
// evdev codes on linux, virtual keycodes elsewhere. The engine only
// compares keys for equality.
type Key uint16

// Action is an abstract output code a Sink knows how to synthesize.
type Action string

const (
	// ActionEisu requests a switch to alphanumeric input.
	ActionEisu Action = "eisu"
	// ActionKana requests a switch to kana input.
	ActionKana Action = "kana"
)

// Kind classifies a source notification.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	// KeyRepeat is a host autorepeat of a held key.
	KeyRepeat
	// Suspended reports that the host paused event delivery. The engine
	// answers with exactly one Enable call on the source.
	Suspended
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	case KeyRepeat:
		return "repeat"
	case Suspended:
		return "suspended"
	}
	return "unknown"
}

// Event is one notification from a Source. Time carries the host
// timestamp of the physical event and is zero for Suspended.
type Event struct {
	Kind Kind
	Key  Key
	Time time.Time
}

// Source is the host keyboard stream the engine subscribes to.
//
// Implementations deliver events one at a time, on a single goroutine,
// in the order they occurred on the host. Register starts delivery to
// handler. Unregister stops it and must not return while the handler
// is running; after Unregister returns the handler is never invoked
// again. Enable and Disable gate delivery without tearing the
// subscription down and must be safe to call from the handler
// goroutine itself.
type Source interface {
	Register(handler func(Event)) error
	Unregister()
	Enable()
	Disable()
}

// Sink synthesizes one key press+release pair for an action code.
// Emit must not block: delivery is best effort and unacknowledged, and
// the engine never retries (tapping again reissues the request).
type Sink interface {
	Emit(Action)
}

// ErrPermissionDenied reports that the host refused the monitoring
// capability. Sources wrap it so callers can test with errors.Is.
var ErrPermissionDenied = errors.New("keyboard monitoring permission denied")
