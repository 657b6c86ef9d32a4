package tap

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Engine consumes a Source's ordered event stream, tracks each side of
// the watched modifier independently, and emits one Sink action per
// lone short tap.
//
// Event handling runs entirely on the source's delivery goroutine, so
// per-side state needs no locking; the host suspends delivery when a
// callback stalls, so the engine never blocks while handling an event.
// Start and Stop may be called from any goroutine and are serialized by
// a mutex.
type Engine struct {
	cfg  Config
	src  Source
	sink Sink
	log  zerolog.Logger

	mu      sync.Mutex
	running bool

	// Delivery state. While a session is live only the handler touches
	// these; the control plane resets them between sessions.
	sides [2]sideState
	other bool

	ct counters
}

type sideState struct {
	pressed   bool
	pressedAt time.Time
}

// New builds an engine over src and sink. logger may be nil.
func New(cfg Config, src Source, sink Sink, logger *zerolog.Logger) *Engine {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "tap").Logger()
	}
	return &Engine{cfg: cfg, src: src, sink: sink, log: l}
}

// Start begins a monitoring session. A running session is fully torn
// down first, so Start doubles as restart and never stacks
// registrations. State is fresh on every start: nothing pends across
// sessions. Start reports an error wrapping ErrPermissionDenied when
// the host refuses the monitoring capability; it never retries.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.teardown()
	}
	e.sides = [2]sideState{}
	e.other = false
	if err := e.src.Register(e.handle); err != nil {
		return fmt.Errorf("register event source: %w", err)
	}
	e.src.Enable()
	e.running = true
	e.log.Info().Dur("max_tap", e.cfg.maxTap()).Msg("monitoring started")
	return nil
}

// Stop ends the current session and discards its state. It is
// idempotent and safe to call before any Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.teardown()
}

// Running reports whether a monitoring session is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// teardown unregisters from the source. Unregister returns only once
// the handler has quiesced, so afterwards no event handling is in
// flight. Callers hold e.mu.
func (e *Engine) teardown() {
	e.src.Disable()
	e.src.Unregister()
	e.running = false
	e.log.Info().Msg("monitoring stopped")
}

// handle processes one source notification in delivery order.
func (e *Engine) handle(ev Event) {
	if ev.Kind == Suspended {
		// Exactly one re-enable per suspension, before any further
		// event; pending press state is untouched.
		e.ct.suspends.Add(1)
		e.log.Warn().Msg("host suspended delivery, re-enabling")
		e.src.Enable()
		return
	}
	side, watched := e.sideOf(ev.Key)
	switch ev.Kind {
	case KeyDown:
		if watched {
			e.sides[side] = sideState{pressed: true, pressedAt: ev.Time}
			// The interference flag is shared: either side's press
			// clears it for both.
			e.other = false
			return
		}
		e.other = true
		e.ct.otherKeys.Add(1)
	case KeyRepeat:
		if watched {
			// Modifiers do not autorepeat on real hosts; if one slips
			// through it neither restarts the window nor interferes.
			return
		}
		e.other = true
		e.ct.otherKeys.Add(1)
	case KeyUp:
		if watched {
			e.release(side, ev.Time)
		}
	}
}

func (e *Engine) sideOf(k Key) (Side, bool) {
	switch k {
	case e.cfg.Keys[Primary]:
		return Primary, true
	case e.cfg.Keys[Secondary]:
		return Secondary, true
	}
	return 0, false
}

// release judges one watched-key release and resets that side
// unconditionally. Emission is fire and forget: the sink must not
// block and the engine does not retry.
func (e *Engine) release(side Side, now time.Time) {
	st := &e.sides[side]
	d := Decision{Side: side}
	if !st.pressed {
		d.Reason = ReasonStale
		e.ct.stale.Add(1)
	} else {
		d.Duration = now.Sub(st.pressedAt)
		switch {
		case e.other:
			d.Reason = ReasonInterference
			e.ct.interfered.Add(1)
		case d.Duration > e.cfg.maxTap():
			d.Reason = ReasonSlow
			e.ct.slow.Add(1)
		default:
			d.Reason = ReasonFired
			e.ct.taps[side].Add(1)
			e.sink.Emit(e.cfg.Actions[side])
		}
	}
	*st = sideState{}
	e.log.Debug().
		Stringer("side", side).
		Dur("duration", d.Duration).
		Str("verdict", string(d.Reason)).
		Msg("release judged")
	if e.cfg.OnDecision != nil {
		e.cfg.OnDecision(d)
	}
}
