package cadence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolveProfiles(t *testing.T) {
	cases := []struct {
		profile Profile
		signals Signals
		want    time.Duration
	}{
		{ProfileNormal, Signals{}, IntervalNormal},
		{ProfileRed, Signals{}, IntervalRed},
		{ProfileLowPower, Signals{}, IntervalLowPower},
		{ProfileAuto, Signals{}, IntervalNormal},
		{ProfileAuto, Signals{ReducedData: true}, IntervalLowPower},
		{ProfileAuto, Signals{Backgrounded: true}, IntervalLowPower},
		// Urgent overrides every other signal.
		{ProfileAuto, Signals{Urgent: true, ReducedData: true, Backgrounded: true}, IntervalRed},
	}
	for _, c := range cases {
		if got := Resolve(c.profile, c.signals); got != c.want {
			t.Fatalf("Resolve(%s, %+v): got %v, want %v", c.profile, c.signals, got, c.want)
		}
	}
}

func TestControllerEffectiveInterval(t *testing.T) {
	ctrl := NewController(ProfileNormal)
	if got := ctrl.EffectiveInterval(); got != IntervalNormal {
		t.Fatalf("got %v, want %v", got, IntervalNormal)
	}
	ctrl.SetProfile(ProfileRed)
	if got := ctrl.EffectiveInterval(); got != IntervalRed {
		t.Fatalf("got %v, want %v", got, IntervalRed)
	}
	ctrl.SetProfile(ProfileAuto)
	ctrl.SetSignals(Signals{Backgrounded: true})
	if got := ctrl.EffectiveInterval(); got != IntervalLowPower {
		t.Fatalf("got %v, want %v", got, IntervalLowPower)
	}
}

// fakeSource lets tests retune the runner with observable intervals.
type fakeSource struct {
	interval atomic.Int64 // nanoseconds
	changed  chan struct{}
}

func newFakeSource(d time.Duration) *fakeSource {
	s := &fakeSource{changed: make(chan struct{}, 1)}
	s.interval.Store(int64(d))
	return s
}

func (s *fakeSource) EffectiveInterval() time.Duration { return time.Duration(s.interval.Load()) }

func (s *fakeSource) Changed() <-chan struct{} { return s.changed }

func (s *fakeSource) set(d time.Duration) {
	s.interval.Store(int64(d))
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// TestRunnerRetunesWithoutRestart parks a runner on an interval far longer
// than the test, then switches to a short one and expects the next tick at
// the short cadence — the running loop must pick the change up on its own,
// exactly as a normal→red profile switch does through Controller.
func TestRunnerRetunesWithoutRestart(t *testing.T) {
	src := newFakeSource(time.Hour)

	var ticks atomic.Int32
	runner := NewRunner(src, func(context.Context) { ticks.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = runner.Run(ctx)
		close(done)
	}()

	// Let the loop arm its first (long) wait, then retune.
	time.Sleep(20 * time.Millisecond)
	src.set(10 * time.Millisecond)

	deadline := time.Now().Add(5 * time.Second)
	for ticks.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Fatal("runner never picked up the retuned interval")
	}

	cancel()
	<-done
}

// TestControllerNotifiesRunnerPath ties the two halves together: a profile
// switch on the controller must wake a pending runner wait.
func TestControllerNotifiesRunnerPath(t *testing.T) {
	ctrl := NewController(ProfileNormal)
	ctrl.SetProfile(ProfileRed)
	select {
	case <-ctrl.Changed():
	default:
		t.Fatal("profile switch must signal the change channel")
	}
	if ctrl.EffectiveInterval() != IntervalRed {
		t.Fatal("next tick must resolve to the red interval")
	}
}
