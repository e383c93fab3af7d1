package core

// Counter is the abstract free-running hardware timer the monotonic clock
// is built on. Platform-specific implementations handle register access.
type Counter interface {
	// Count returns the current value of the 32-bit counter
	Count() uint32

	// OverflowPending reports whether the counter has wrapped since the
	// last ClearOverflow
	OverflowPending() bool

	// ClearOverflow acknowledges a wrap and arms detection of the next one
	ClearOverflow()

	// SetCompare arms the compare-match interrupt at the given counter value,
	// replacing any previously armed value
	SetCompare(value uint32)

	// DisableCompare disarms the compare-match interrupt
	DisableCompare()
}
