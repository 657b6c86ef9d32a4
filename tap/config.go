package tap

import "time"

// DefaultMaxTapDuration bounds press→release when the configuration
// does not say otherwise.
const DefaultMaxTapDuration = 300 * time.Millisecond

// Config fixes the engine's policy. It is immutable for the lifetime
// of the engine; changing it means building a new engine.
type Config struct {
	// MaxTapDuration is the longest press→release interval still judged
	// a tap. The boundary is inclusive: a release at exactly
	// MaxTapDuration fires. Zero or negative means DefaultMaxTapDuration.
	MaxTapDuration time.Duration

	// Keys maps each Side to the physical key it watches.
	Keys [2]Key

	// Actions maps each Side to the action emitted for its tap.
	Actions [2]Action

	// OnDecision, when set, observes the verdict of every watched-key
	// release. It runs synchronously on the delivery goroutine and must
	// not block.
	OnDecision func(Decision)
}

func (c Config) maxTap() time.Duration {
	if c.MaxTapDuration <= 0 {
		return DefaultMaxTapDuration
	}
	return c.MaxTapDuration
}

// Reason says how a release was judged.
type Reason string

const (
	// ReasonFired: the release was a tap and the action was emitted.
	ReasonFired Reason = "fired"
	// ReasonSlow: held longer than MaxTapDuration.
	ReasonSlow Reason = "slow"
	// ReasonInterference: another key was pressed since this side's press.
	ReasonInterference Reason = "interference"
	// ReasonStale: release without a matching press in this session.
	ReasonStale Reason = "stale"
)

// Decision describes the verdict on one watched-key release.
// Duration is zero for ReasonStale.
type Decision struct {
	Side     Side
	Duration time.Duration
	Reason   Reason
}

// Fired reports whether the release emitted an action.
func (d Decision) Fired() bool { return d.Reason == ReasonFired }
