package cadence

import (
	"sync"
	"time"
)

// Profile selects the publish cadence.
type Profile string

const (
	ProfileNormal   Profile = "normal"
	ProfileRed      Profile = "red"
	ProfileLowPower Profile = "low-power"
	ProfileAuto     Profile = "auto"
)

// Intervals per profile.
const (
	IntervalNormal   = 10 * time.Minute
	IntervalRed      = 45 * time.Second
	IntervalLowPower = 20 * time.Minute
)

// Signals are the ambient inputs the auto profile derives from.
type Signals struct {
	ReducedData  bool // metered / data-saver connection
	Backgrounded bool // app hidden or backgrounded
	Urgent       bool // explicit urgent flag, overrides everything
}

// Resolve maps a profile and signals to an interval. For ProfileAuto:
// urgent wins outright, then reduced-data or backgrounded drop to low
// power, otherwise normal.
func Resolve(p Profile, s Signals) time.Duration {
	switch p {
	case ProfileRed:
		return IntervalRed
	case ProfileLowPower:
		return IntervalLowPower
	case ProfileAuto:
		if s.Urgent {
			return IntervalRed
		}
		if s.ReducedData || s.Backgrounded {
			return IntervalLowPower
		}
		return IntervalNormal
	default:
		return IntervalNormal
	}
}

// Controller holds the live cadence configuration. Reads and writes are
// safe for concurrent use; changes are broadcast to running Runners.
type Controller struct {
	mu      sync.RWMutex
	profile Profile
	signals Signals
	changed chan struct{} // buffered(1) edge trigger
}

// NewController starts at the given profile.
func NewController(p Profile) *Controller {
	if p == "" {
		p = ProfileNormal
	}
	return &Controller{profile: p, changed: make(chan struct{}, 1)}
}

// Profile returns the current profile.
func (c *Controller) Profile() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// SetProfile switches profile and wakes any runner so the new interval
// applies to the next tick immediately.
func (c *Controller) SetProfile(p Profile) {
	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()
	c.notify()
}

// SetSignals updates the auto-profile inputs.
func (c *Controller) SetSignals(s Signals) {
	c.mu.Lock()
	c.signals = s
	c.mu.Unlock()
	c.notify()
}

// EffectiveInterval resolves the interval for the current state.
func (c *Controller) EffectiveInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Resolve(c.profile, c.signals)
}

// Changed returns the change-notification channel.
func (c *Controller) Changed() <-chan struct{} { return c.changed }

func (c *Controller) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}
