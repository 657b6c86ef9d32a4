package tap

import "sync/atomic"

type counters struct {
	taps       [2]atomic.Uint64
	slow       atomic.Uint64
	interfered atomic.Uint64
	stale      atomic.Uint64
	otherKeys  atomic.Uint64
	suspends   atomic.Uint64
}

// Stats is a point-in-time snapshot of the engine's counters. Counters
// are monotonic for the life of the process and accumulate across
// session restarts; reading them never blocks event delivery.
type Stats struct {
	// Taps counts emitted actions per side.
	Taps [2]uint64
	// Slow counts releases suppressed by the duration window.
	Slow uint64
	// Interfered counts releases suppressed by other key activity.
	Interfered uint64
	// Stale counts releases that had no matching press.
	Stale uint64
	// OtherKeys counts non-watched key presses seen while monitoring.
	OtherKeys uint64
	// Suspends counts host delivery suspensions recovered from.
	Suspends uint64
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Taps:       [2]uint64{e.ct.taps[Primary].Load(), e.ct.taps[Secondary].Load()},
		Slow:       e.ct.slow.Load(),
		Interfered: e.ct.interfered.Load(),
		Stale:      e.ct.stale.Load(),
		OtherKeys:  e.ct.otherKeys.Load(),
		Suspends:   e.ct.suspends.Load(),
	}
}
