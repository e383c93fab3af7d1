//go:build !tinygo

package core

// SimCounter is a software 32-bit counter for host builds. Time only moves
// when Advance is called; compare matches and wraps pend the lines given to
// Attach, exactly once per event.
type SimCounter struct {
	count    uint32
	compare  uint32
	armed    bool
	overflow bool

	onCompare  func()
	onOverflow func()
}

// NewSimCounter creates a counter starting at start. Starting close to
// 0xFFFFFFFF exercises the wrap early.
func NewSimCounter(start uint32) *SimCounter {
	return &SimCounter{count: start}
}

// Attach routes compare and overflow events to controller lines
func (s *SimCounter) Attach(ctrl Controller, compare, overflow Line) {
	s.onCompare = func() { ctrl.Pend(compare) }
	s.onOverflow = func() { ctrl.Pend(overflow) }
}

// Count returns the current counter value
func (s *SimCounter) Count() uint32 {
	return s.count
}

// OverflowPending reports an unacknowledged wrap
func (s *SimCounter) OverflowPending() bool {
	return s.overflow
}

// ClearOverflow acknowledges a wrap
func (s *SimCounter) ClearOverflow() {
	s.overflow = false
}

// SetCompare arms a one-shot match at value
func (s *SimCounter) SetCompare(value uint32) {
	s.compare = value
	s.armed = true
}

// DisableCompare disarms the match
func (s *SimCounter) DisableCompare() {
	s.armed = false
}

// Armed returns the armed compare value
func (s *SimCounter) Armed() (uint32, bool) {
	return s.compare, s.armed
}

// Advance moves the counter forward, stopping at every wrap and compare
// match on the way to deliver the event before continuing
func (s *SimCounter) Advance(ticks uint64) {
	for ticks > 0 {
		step := uint64(1<<32) - uint64(s.count)
		if s.armed {
			d := uint64(s.compare - s.count)
			if d == 0 {
				d = 1 << 32
			}
			if d < step {
				step = d
			}
		}
		if ticks < step {
			s.count += uint32(ticks)
			return
		}

		ticks -= step
		s.count += uint32(step)
		if s.count == 0 {
			s.overflow = true
			if s.onOverflow != nil {
				s.onOverflow()
			}
		}
		if s.armed && s.count == s.compare {
			s.armed = false
			if s.onCompare != nil {
				s.onCompare()
			}
		}
	}
}
