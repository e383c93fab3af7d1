package core

// Timer frequency of the monotonic clock
const (
	TimerFreq = 1000000 // 1MHz, one tick per microsecond
)

// halfPeriod is half the range of the 32-bit hardware counter. Compare
// targets further away than this are reached through intermediate wakeups.
const halfPeriod = 1 << 31

// Instant is a point in monotonic tick-time since power-on.
// The low 32 bits come from the hardware counter, the high 32 bits are
// maintained in software by the overflow handler.
type Instant uint64

// Duration is an elapsed number of timer ticks
type Duration uint64

// Add returns the instant d ticks after t
func (t Instant) Add(d Duration) Instant {
	return t + Instant(d)
}

// Sub returns the ticks elapsed from u to t, computed modulo 2^64.
// Only meaningful while the true distance is below half the range.
func (t Instant) Sub(u Instant) Duration {
	return Duration(t - u)
}

// Before reports whether t is strictly earlier than u
func (t Instant) Before(u Instant) bool {
	return int64(t-u) < 0
}

// After reports whether t is strictly later than u
func (t Instant) After(u Instant) bool {
	return int64(t-u) > 0
}

// Ticks returns the raw tick count
func (t Instant) Ticks() uint64 {
	return uint64(t)
}

// Micros converts microseconds to timer ticks
func Micros(us uint32) Duration {
	return Duration(uint64(us) * TimerFreq / 1000000)
}

// Millis converts milliseconds to timer ticks
func Millis(ms uint32) Duration {
	return Duration(uint64(ms) * TimerFreq / 1000)
}

// Micros converts timer ticks to microseconds
func (d Duration) Micros() uint64 {
	return uint64(d) * 1000000 / TimerFreq
}
