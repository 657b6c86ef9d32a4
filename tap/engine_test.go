package tap

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

const (
	leftKey  Key = 125 // KEY_LEFTMETA
	rightKey Key = 126 // KEY_RIGHTMETA
	otherKey Key = 30  // KEY_A
)

var base = time.Unix(1700000000, 0)

func at(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

func testConfig() Config {
	return Config{
		Keys:    [2]Key{leftKey, rightKey},
		Actions: [2]Action{ActionEisu, ActionKana},
	}
}

func startedEngine(t *testing.T) (*Engine, *FakeSource, *FakeSink) {
	t.Helper()
	src := NewFakeSource()
	sink := NewFakeSink()
	e := New(testConfig(), src, sink, nil)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(e.Stop)
	return e, src, sink
}

func TestLoneTapFires(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, at(150))
	got := sink.Actions()
	if len(got) != 1 || got[0] != ActionEisu {
		t.Fatalf("expected exactly one eisu action, got %v", got)
	}
}

func TestSecondarySideFiresItsOwnAction(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(rightKey, at(0))
	src.SimKeyUp(rightKey, at(100))
	got := sink.Actions()
	if len(got) != 1 || got[0] != ActionKana {
		t.Fatalf("expected exactly one kana action, got %v", got)
	}
}

func TestLongHoldSuppressed(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, at(350))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected no action for a 350ms hold, got %v", got)
	}
}

func TestBoundaryInclusive(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	// exactly MaxTapDuration still fires
	src.SimKeyUp(leftKey, base.Add(DefaultMaxTapDuration))
	if got := sink.Actions(); len(got) != 1 {
		t.Fatalf("expected release at the window boundary to fire, got %v", got)
	}
}

func TestBoundaryExclusiveJustOver(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, base.Add(DefaultMaxTapDuration+time.Nanosecond))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected release 1ns past the window to stay silent, got %v", got)
	}
}

func TestInterferenceSuppresses(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyDown(otherKey, at(50))
	src.SimKeyUp(leftKey, at(100))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected interference to suppress the tap, got %v", got)
	}
}

func TestOtherKeyReleaseDoesNotInterfere(t *testing.T) {
	// only presses count as interference; a release of an unrelated key
	// (e.g. one held from before our press) is ignored
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(otherKey, at(50))
	src.SimKeyUp(leftKey, at(100))
	if got := sink.Actions(); len(got) != 1 {
		t.Fatalf("expected tap to fire despite unrelated key release, got %v", got)
	}
}

func TestIndependence(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyDown(rightKey, at(10))
	src.SimKeyUp(rightKey, at(60))
	got := sink.Actions()
	if len(got) != 1 || got[0] != ActionKana {
		t.Fatalf("expected secondary tap to fire on its own, got %v", got)
	}
	// primary is still held with its own press time; releasing inside
	// the window fires it too
	src.SimKeyUp(leftKey, at(120))
	got = sink.Actions()
	if len(got) != 2 || got[1] != ActionEisu {
		t.Fatalf("expected primary to fire independently, got %v", got)
	}
}

func TestSharedFlagClearedByEitherSide(t *testing.T) {
	// The interference flag is process-wide: a press of the other side
	// clears it, so interference seen before that press is forgotten.
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyDown(otherKey, at(10))
	src.SimKeyDown(rightKey, at(20)) // clears the shared flag
	src.SimKeyUp(leftKey, at(100))
	got := sink.Actions()
	if len(got) != 1 || got[0] != ActionEisu {
		t.Fatalf("expected primary to fire after flag reset by secondary press, got %v", got)
	}
}

func TestReleaseResetsSideEvenWhenSuppressed(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyDown(otherKey, at(10))
	src.SimKeyUp(leftKey, at(50)) // suppressed, side reset
	src.SimKeyDown(leftKey, at(100))
	src.SimKeyUp(leftKey, at(200))
	got := sink.Actions()
	if len(got) != 1 || got[0] != ActionEisu {
		t.Fatalf("expected clean second tap to fire, got %v", got)
	}
}

func TestWatchedRepeatIgnored(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimRepeat(leftKey, at(50)) // neither interferes nor restarts the window
	src.SimKeyUp(leftKey, at(250))
	if got := sink.Actions(); len(got) != 1 {
		t.Fatalf("expected tap despite watched-key repeat, got %v", got)
	}
}

func TestUnwatchedRepeatInterferes(t *testing.T) {
	_, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimRepeat(otherKey, at(50))
	src.SimKeyUp(leftKey, at(100))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected autorepeat of another key to suppress, got %v", got)
	}
}

func TestSuspendRecovery(t *testing.T) {
	_, src, sink := startedEngine(t)
	before := src.Enables() // Start issues one Enable
	src.SimKeyDown(leftKey, at(0))
	src.SimSuspend()
	if got := src.Enables(); got != before+1 {
		t.Fatalf("expected exactly one re-enable after suspension, got %d", got-before)
	}
	// suspension takes no other action: the pending press still fires
	src.SimKeyUp(leftKey, at(100))
	if got := sink.Actions(); len(got) != 1 {
		t.Fatalf("expected pending tap to survive suspension, got %v", got)
	}
}

func TestRepeatedSuspendsAlwaysRecover(t *testing.T) {
	_, src, _ := startedEngine(t)
	before := src.Enables()
	for i := 0; i < 5; i++ {
		src.SimSuspend()
	}
	if got := src.Enables() - before; got != 5 {
		t.Fatalf("expected 5 re-enables for 5 suspensions, got %d", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	e, src, _ := startedEngine(t)
	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if src.Registers() != 2 || src.Unregisters() != 1 {
		t.Fatalf("expected restart to tear down the old session: %d registers, %d unregisters",
			src.Registers(), src.Unregisters())
	}
	if !src.Registered() {
		t.Fatal("expected exactly one live registration after restart")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	src := NewFakeSource()
	e := New(testConfig(), src, NewFakeSink(), nil)
	e.Stop() // before any Start
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Stop()
	e.Stop()
	if src.Unregisters() != 1 {
		t.Fatalf("expected one unregister, got %d", src.Unregisters())
	}
	if e.Running() {
		t.Fatal("expected engine to be stopped")
	}
}

func TestFreshStateOnRestart(t *testing.T) {
	e, src, sink := startedEngine(t)
	src.SimKeyDown(leftKey, at(0)) // left pending at stop time
	e.Stop()
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	src.SimKeyUp(leftKey, at(100))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected no action from a press predating the restart, got %v", got)
	}
}

func TestPermissionDeniedSurfacesFromStart(t *testing.T) {
	src := NewFakeSource()
	src.RegisterErr = fmt.Errorf("open devices: %w", ErrPermissionDenied)
	e := New(testConfig(), src, NewFakeSink(), nil)
	err := e.Start()
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if e.Running() {
		t.Fatal("engine must not be running after a failed Start")
	}
}

func TestDecisionsObserved(t *testing.T) {
	var decisions []Decision
	cfg := testConfig()
	cfg.OnDecision = func(d Decision) { decisions = append(decisions, d) }
	src := NewFakeSource()
	e := New(cfg, src, NewFakeSink(), nil)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, at(150)) // fired
	src.SimKeyDown(leftKey, at(200))
	src.SimKeyUp(leftKey, at(600)) // slow
	src.SimKeyDown(rightKey, at(700))
	src.SimKeyDown(otherKey, at(710))
	src.SimKeyUp(rightKey, at(720)) // interference
	src.SimKeyUp(rightKey, at(730)) // stale

	want := []Reason{ReasonFired, ReasonSlow, ReasonInterference, ReasonStale}
	if len(decisions) != len(want) {
		t.Fatalf("expected %d decisions, got %d", len(want), len(decisions))
	}
	for i, r := range want {
		if decisions[i].Reason != r {
			t.Fatalf("decision %d: expected %s, got %s", i, r, decisions[i].Reason)
		}
	}
	if decisions[0].Duration != 150*time.Millisecond {
		t.Fatalf("expected 150ms duration on first decision, got %v", decisions[0].Duration)
	}
}

func TestStatsCount(t *testing.T) {
	e, src, _ := startedEngine(t)
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, at(100))
	src.SimKeyDown(rightKey, at(200))
	src.SimKeyUp(rightKey, at(900))
	src.SimKeyDown(otherKey, at(1000))
	src.SimSuspend()

	st := e.Stats()
	if st.Taps[Primary] != 1 || st.Taps[Secondary] != 0 {
		t.Fatalf("unexpected tap counts: %+v", st.Taps)
	}
	if st.Slow != 1 || st.OtherKeys != 1 || st.Suspends != 1 {
		t.Fatalf("unexpected counters: %+v", st)
	}
}

func TestCustomWindow(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTapDuration = 100 * time.Millisecond
	src := NewFakeSource()
	sink := NewFakeSink()
	e := New(cfg, src, sink, nil)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()
	src.SimKeyDown(leftKey, at(0))
	src.SimKeyUp(leftKey, at(150))
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected 150ms to miss a 100ms window, got %v", got)
	}
}
