package core

// Clock turns a wrapping 32-bit Counter into a monotonic 64-bit Instant.
// It is the only source of "now" for the scheduler.
type Clock struct {
	counter Counter
	high    uint32 // wraps serviced so far

	// fire is invoked when a compare target has already elapsed, so the
	// timer interrupt runs even though the hardware match was missed.
	fire func()
}

// NewClock wraps a hardware counter. The counter is owned by the clock from
// here on.
func NewClock(counter Counter) *Clock {
	return &Clock{counter: counter}
}

// Now returns the current instant. It never blocks and may be called from
// any priority level.
func (c *Clock) Now() Instant {
	state := disableInterrupts()
	// The count must be read before the overflow flag: a wrap between the
	// two reads then shows up as a high count with the flag set.
	low := c.counter.Count()
	high := c.high
	if c.counter.OverflowPending() && low < halfPeriod {
		high++
	}
	restoreInterrupts(state)

	return Instant(uint64(high)<<32 | uint64(low))
}

// OnOverflow is the counter wrap handler. It extends the tick count by one
// epoch per wrap. Spurious calls are ignored.
func (c *Clock) OnOverflow() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if !c.counter.OverflowPending() {
		return false
	}
	c.counter.ClearOverflow()
	c.high++
	return true
}

// SetCompare arms the next timer interrupt at or after at.
// Targets that have already elapsed fire immediately. For targets more than
// half a counter period away an intermediate wakeup is armed instead, and the
// timer handler re-arms from there. It reports whether the target was
// already due.
func (c *Clock) SetCompare(at Instant) bool {
	now := c.Now()
	if !now.Before(at) {
		c.pendNow()
		return true
	}

	if at.Sub(now) >= halfPeriod {
		c.counter.SetCompare(uint32(now.Add(halfPeriod / 2)))
		return false
	}

	c.counter.SetCompare(uint32(at))

	// The counter may have passed the target while the compare was written
	if !c.Now().Before(at) {
		c.pendNow()
		return true
	}
	return false
}

// DisableCompare stops compare interrupts, used when nothing is pending
func (c *Clock) DisableCompare() {
	c.counter.DisableCompare()
}

func (c *Clock) pendNow() {
	if c.fire != nil {
		c.fire()
	}
}
