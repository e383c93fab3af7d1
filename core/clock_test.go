package core

import "testing"

func TestInstantOrdering(t *testing.T) {
	a := Instant(100)
	b := a.Add(50)

	if !a.Before(b) || !b.After(a) {
		t.Errorf("Expected %d before %d", a, b)
	}
	if a.Before(a) || a.After(a) {
		t.Error("Instant compared unequal to itself")
	}
	if got := b.Sub(a); got != 50 {
		t.Errorf("Expected Sub 50, got %d", got)
	}

	// Ordering survives the 64-bit wrap
	last := Instant(^uint64(0))
	next := last.Add(1)
	if next != 0 || !last.Before(next) {
		t.Errorf("Expected %d before %d across wrap", last, next)
	}
	if got := next.Sub(last); got != 1 {
		t.Errorf("Expected wrap-aware Sub 1, got %d", got)
	}
}

func TestDurationConversion(t *testing.T) {
	if got := Micros(700); got != 700 {
		t.Errorf("Micros(700) = %d, want 700 ticks at 1MHz", got)
	}
	if got := Millis(1500); got != 1500000 {
		t.Errorf("Millis(1500) = %d, want 1500000", got)
	}
	if got := Micros(1000000).Micros(); got != 1000000 {
		t.Errorf("round trip through ticks gave %d", got)
	}
}

func TestClockMonotonicAcrossWrap(t *testing.T) {
	const start = 0xFFFFFF00
	cnt := NewSimCounter(start)
	clock := NewClock(cnt)

	prev := clock.Now()
	if prev != start {
		t.Fatalf("Expected first sample %d, got %d", uint64(start), prev)
	}

	elapsed := uint64(0)
	for i := 0; i < 200; i++ {
		cnt.Advance(7)
		elapsed += 7

		// Service the wrap only every few samples so both paths are taken
		if i%5 == 0 {
			clock.OnOverflow()
		}

		now := clock.Now()
		if now.Before(prev) {
			t.Fatalf("Sample %d went backwards: %d after %d", i, now, prev)
		}
		if want := Instant(start + elapsed); now != want {
			t.Fatalf("Sample %d: expected %d, got %d", i, want, now)
		}
		prev = now
	}

	if clock.high != 1 {
		t.Errorf("Expected exactly one serviced wrap, high=%d", clock.high)
	}
}

func TestClockOverflowIgnoresSpurious(t *testing.T) {
	cnt := NewSimCounter(0xFFFFFFFF)
	clock := NewClock(cnt)

	if clock.OnOverflow() {
		t.Error("OnOverflow counted a wrap that did not happen")
	}

	cnt.Advance(1)
	if !clock.OnOverflow() {
		t.Error("OnOverflow missed a wrap")
	}
	if clock.OnOverflow() {
		t.Error("OnOverflow counted the same wrap twice")
	}
	if now := clock.Now(); now != 1<<32 {
		t.Errorf("Expected now=%d, got %d", uint64(1<<32), now)
	}
}

func TestClockSetComparePastFiresImmediately(t *testing.T) {
	cnt := NewSimCounter(1000)
	clock := NewClock(cnt)

	fired := 0
	clock.fire = func() { fired++ }

	if !clock.SetCompare(500) {
		t.Error("Expected elapsed target to be reported due")
	}
	if !clock.SetCompare(1000) {
		t.Error("Expected target equal to now to be reported due")
	}
	if fired != 2 {
		t.Errorf("Expected 2 immediate fires, got %d", fired)
	}

	if clock.SetCompare(1500) {
		t.Error("Future target reported due")
	}
	if v, armed := cnt.Armed(); !armed || v != 1500 {
		t.Errorf("Expected compare armed at 1500, got %d armed=%v", v, armed)
	}
	if fired != 2 {
		t.Errorf("Future target fired early")
	}
}

func TestClockSetCompareFarTarget(t *testing.T) {
	cnt := NewSimCounter(0)
	clock := NewClock(cnt)

	// Three quarters of a counter period away: an intermediate wakeup is
	// armed instead of a compare that would alias
	far := Instant(3 << 30)
	clock.SetCompare(far)

	v, armed := cnt.Armed()
	if !armed {
		t.Fatal("Expected an intermediate compare to be armed")
	}
	if v != halfPeriod/2 {
		t.Errorf("Expected intermediate compare at %d, got %d", halfPeriod/2, v)
	}
}
