package cadence

import (
	"context"
	"time"
)

// IntervalSource yields the current tick interval and a change
// notification. *Controller implements it.
type IntervalSource interface {
	EffectiveInterval() time.Duration
	Changed() <-chan struct{}
}

// Runner invokes a function at the source's cadence. The wait is rebuilt
// from the source on every tick and whenever the source reports a change,
// so a profile switch retunes the next tick without restarting the loop.
type Runner struct {
	ctrl IntervalSource
	fn   func(ctx context.Context)
}

// NewRunner builds a runner over src calling fn once per tick.
func NewRunner(src IntervalSource, fn func(ctx context.Context)) *Runner {
	return &Runner{ctrl: src, fn: fn}
}

// Run blocks until ctx is cancelled. The first tick happens after one full
// interval, not immediately.
func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(r.ctrl.EffectiveInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.ctrl.Changed():
			// Retune the pending wait in place.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.ctrl.EffectiveInterval())
		case <-timer.C:
			r.fn(ctx)
			timer.Reset(r.ctrl.EffectiveInterval())
		}
	}
}
